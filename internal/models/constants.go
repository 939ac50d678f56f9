// Package models contains the data types shared by the chat client.
package models

import "strings"

// ChatPath is appended to the configured API base URL.
const ChatPath = "/chat"

// Message roles
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Greeting seeds every new transcript.
const Greeting = "Hi, I'm TARS. Ask me anything about your data, or pick a dataset with /dataset to narrow my answers."

// DefaultAssistantName is shown when no dataset is selected.
const DefaultAssistantName = "TARS"

// Dataset narrows the remote assistant's answer domain
type Dataset string

// Available datasets
const (
	DatasetNone Dataset = ""
	DatasetDS1  Dataset = "DS-1"
	DatasetDS2  Dataset = "DS-2"
)

// AllDatasets returns the selectable datasets in display order
func AllDatasets() []Dataset {
	return []Dataset{DatasetNone, DatasetDS1, DatasetDS2}
}

// DisplayName returns the label used in confirmations and the header
func (d Dataset) DisplayName() string {
	if d == DatasetNone {
		return DefaultAssistantName
	}
	return string(d)
}

// Wire returns the value sent as the request's dataset field (nil means JSON null)
func (d Dataset) Wire() *string {
	if d == DatasetNone {
		return nil
	}
	s := string(d)
	return &s
}

// ParseDataset resolves a user-supplied dataset name.
// "", "none" and "tars" select no dataset.
func ParseDataset(name string) (Dataset, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "tars":
		return DatasetNone, true
	case "ds-1", "ds1":
		return DatasetDS1, true
	case "ds-2", "ds2":
		return DatasetDS2, true
	}
	return DatasetNone, false
}

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "tarschat/1.0",
	}
}
