package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"streamtally/internal/core"
)

func TestAppendActivityRequestPayload(t *testing.T) {
	tests := []struct {
		name    string
		req     AppendActivityRequest
		want    core.ActivityPayload
		wantErr error
	}{
		{
			name: "sub",
			req:  AppendActivityRequest{Type: "sub", Username: "u", Tier: "Tier 2", Count: "3"},
			want: core.ActivityPayload{Kind: core.KindSub, Username: "u", Tier: core.Tier2, Count: 3},
		},
		{
			name: "donation with comma decimal",
			req:  AppendActivityRequest{Type: "donation", Username: "u", Amount: "12,34"},
			want: core.ActivityPayload{Kind: core.KindDonation, Username: "u", Amount: core.Money{Cents: 1234}},
		},
		{
			name: "donation ignores count",
			req:  AppendActivityRequest{Type: "donation", Username: "u", Amount: "5", Count: "abc"},
			want: core.ActivityPayload{Kind: core.KindDonation, Username: "u", Amount: core.Money{Cents: 500}},
		},
		{
			name: "prime ignores tier and count",
			req:  AppendActivityRequest{Type: "prime_sub", Username: "u", Tier: "Tier 3", Count: "4"},
			want: core.ActivityPayload{Kind: core.KindPrimeSub, Username: "u"},
		},
		{
			name: "exponent count",
			req:  AppendActivityRequest{Type: "gift_sub", Username: "u", Tier: "Tier 1", Count: "2e0"},
			want: core.ActivityPayload{Kind: core.KindGiftSub, Username: "u", Tier: core.Tier1, Count: 2},
		},
		{
			name: "exponent amount",
			req:  AppendActivityRequest{Type: "donation", Username: "u", Amount: "1e1"},
			want: core.ActivityPayload{Kind: core.KindDonation, Username: "u", Amount: core.Money{Cents: 1000}},
		},
		{
			name: "exponent amount rounds to cents",
			req:  AppendActivityRequest{Type: "donation", Username: "u", Amount: "1.2345E1"},
			want: core.ActivityPayload{Kind: core.KindDonation, Username: "u", Amount: core.Money{Cents: 1235}},
		},
		{
			name:    "fractional exponent count",
			req:     AppendActivityRequest{Type: "sub", Username: "u", Tier: "Tier 1", Count: "25e-1"},
			wantErr: core.ErrInvalidCount,
		},
		{
			name:    "negative exponent amount",
			req:     AppendActivityRequest{Type: "donation", Username: "u", Amount: "-1e1"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "oversized exponent amount",
			req:     AppendActivityRequest{Type: "donation", Username: "u", Amount: "1e400"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "missing count",
			req:     AppendActivityRequest{Type: "gift_sub", Username: "u", Tier: "Tier 1"},
			wantErr: core.ErrInvalidCount,
		},
		{
			name:    "non integer count",
			req:     AppendActivityRequest{Type: "gift_sub", Username: "u", Tier: "Tier 1", Count: "2.5"},
			wantErr: core.ErrInvalidCount,
		},
		{
			name:    "missing amount",
			req:     AppendActivityRequest{Type: "donation", Username: "u"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			req:     AppendActivityRequest{Type: "donation", Username: "u", Amount: "0.00"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "unknown type",
			req:     AppendActivityRequest{Type: "raid", Username: "u"},
			wantErr: core.ErrUnknownActivityKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Payload()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Payload() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Payload() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Payload() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"type":"sub","count":2}`, false},
		{"numeric string", `{"type":"sub","count":"2"}`, false},
		{"empty", ``, true},
		{"truncated", `{"type":`, true},
		{"two objects", `{} {}`, true},
		{"too large", `{"username":"` + strings.Repeat("x", maxBodyBytes) + `"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req AppendActivityRequest
			err := decodeJSON(httptest.NewRecorder(), r, &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errMalformedBody) {
				t.Errorf("error %v does not wrap errMalformedBody", err)
			}
			if err == nil && req.Count != json.Number("2") {
				t.Errorf("Count = %q", req.Count)
			}
		})
	}
}
