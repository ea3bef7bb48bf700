package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestInboundClassification(t *testing.T) {
	tests := []struct {
		name    string
		msg     inboundMessage
		control bool
	}{
		{
			name:    "explicit meta type",
			msg:     inboundMessage{Type: "meta", Exercise: strPtr("squat")},
			control: true,
		},
		{
			name:    "meta type wins even with a frame",
			msg:     inboundMessage{Type: "meta", Skeleton: boolPtr(false), Frame: "abcd"},
			control: true,
		},
		{
			name:    "skeleton toggle without frame",
			msg:     inboundMessage{Skeleton: boolPtr(false)},
			control: true,
		},
		{
			name:    "verbose toggle without frame",
			msg:     inboundMessage{Verbose: boolPtr(true)},
			control: true,
		},
		{
			name:    "frame with inline toggle is a frame message",
			msg:     inboundMessage{Frame: "abcd", Skeleton: boolPtr(true)},
			control: false,
		},
		{
			name:    "bare exercise selection follows the frame path",
			msg:     inboundMessage{Exercise: strPtr("squat")},
			control: false,
		},
		{
			name:    "empty message follows the frame path",
			msg:     inboundMessage{},
			control: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.control, tt.msg.isControl())
		})
	}
}
