package models

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at,omitempty"`
}

// ResponseMode controls how long the assistant's replies are.
type ResponseMode string

const (
	ModeConcise  ResponseMode = "concise"
	ModeDetailed ResponseMode = "detailed"
)

// ChatOptions are the per-turn toggles.
type ChatOptions struct {
	Profile   RiskProfile
	Mode      ResponseMode
	WebSearch bool
	StockData bool
}

// ChatReply is the assistant's answer plus any enrichment notices.
type ChatReply struct {
	Reply    string   `json:"reply"`
	Warnings []string `json:"warnings,omitempty"`
}

// Chunk is a retrievable slice of an uploaded document.
type Chunk struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Text   string `json:"text"`
}

// Document is an uploaded file waiting to be indexed.
type Document struct {
	Name string
	Data []byte
}
