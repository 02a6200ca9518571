package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIssueTokenRequest_Validate(t *testing.T) {
	valid := uuid.Must(uuid.NewV7()).String()

	tests := []struct {
		name      string
		request   IssueTokenRequest
		shouldErr bool
	}{
		{name: "valid", request: IssueTokenRequest{ClientID: valid, ClientSecret: "secret"}},
		{name: "missing client id", request: IssueTokenRequest{ClientSecret: "secret"}, shouldErr: true},
		{name: "malformed client id", request: IssueTokenRequest{ClientID: "x", ClientSecret: "s"}, shouldErr: true},
		{name: "blank secret", request: IssueTokenRequest{ClientID: valid, ClientSecret: "  "}, shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.shouldErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
