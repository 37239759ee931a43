package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE quotes;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortOrder(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		allowedMap   map[string]bool
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", QuoteSortFields, "created_at", "created_at"},
		{"valid field returns field", "status", QuoteSortFields, "created_at", "status"},
		{"valid field sent_at returns field", "sent_at", QuoteSortFields, "created_at", "sent_at"},
		{"invalid field returns default", "job_description", QuoteSortFields, "created_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE quotes;--", QuoteSortFields, "created_at", "created_at"},
		{"case sensitive - uppercase invalid", "STATUS", QuoteSortFields, "created_at", "created_at"},
		{"whitespace around valid field returns field", "  paid_at  ", QuoteSortFields, "created_at", "paid_at"},
		{"accepted_at is sortable", "accepted_at", QuoteSortFields, "created_at", "accepted_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortField(tt.input, tt.allowedMap, tt.defaultField)
			assert.Equal(t, tt.expected, result)
		})
	}
}
