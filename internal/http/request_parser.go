// Package http provides HTTP server and handler implementations.
//
// This file decodes request bodies and path parameters into domain values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"streamtally/internal/core"
)

const (
	maxBodyBytes = 64 << 10
	// Upper bound for donations written in exponent form.
	maxAmountDollars = 1e12
)

var errMalformedBody = errors.New("malformed JSON body")

// CreateLogRequest is the body of POST /api/logs.
type CreateLogRequest struct {
	Date         string `json:"date"`
	StreamerName string `json:"streamerName"`
	StreamTitle  string `json:"streamTitle"`
}

// AppendActivityRequest is the body of POST /api/logs/{id}/activities.
// Count and Amount accept JSON numbers or numeric strings.
type AppendActivityRequest struct {
	Type     string      `json:"type"`
	Username string      `json:"username"`
	Tier     string      `json:"tier,omitempty"`
	Count    json.Number `json:"count,omitempty"`
	Amount   json.Number `json:"amount,omitempty"`
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// Header validates the request into a normalized header.
func (req CreateLogRequest) Header() (core.Header, error) {
	return core.NewHeader(req.Date, req.StreamerName, req.StreamTitle)
}

// Payload converts the request into an activity payload. Fields that do not
// apply to the activity type are ignored.
func (req AppendActivityRequest) Payload() (core.ActivityPayload, error) {
	p := core.ActivityPayload{
		Kind:     core.ActivityKind(strings.TrimSpace(req.Type)),
		Username: req.Username,
	}
	switch p.Kind {
	case core.KindSub, core.KindGiftSub:
		p.Tier = core.Tier(strings.TrimSpace(req.Tier))
		n, err := parseCount(req.Count)
		if err != nil {
			return p, err
		}
		p.Count = n
	case core.KindDonation:
		cents, err := parseAmount(req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = core.Money{Cents: cents}
	}
	return p, p.Validate()
}

func parseCount(n json.Number) (int, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, core.ErrInvalidCount
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	// Exponent form such as 2e0 is a valid JSON integer.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidCount, s)
	}
	return int(f), nil
}

func parseAmount(n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if !strings.ContainsAny(s, "eE") {
		return core.ParseDecimalToCents(s)
	}
	// ParseFloat bounds the exponent before the exact conversion below.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f > maxAmountDollars {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	r.Mul(r, big.NewRat(100, 1))
	// Half-up rounding to whole cents: floor((2*num + den) / (2*den)).
	num := new(big.Int).Lsh(r.Num(), 1)
	num.Add(num, r.Denom())
	cents := num.Quo(num, new(big.Int).Lsh(r.Denom(), 1))
	if cents.Sign() <= 0 || !cents.IsInt64() {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return cents.Int64(), nil
}

// pathYear reads the {year} URL parameter.
func pathYear(r *http.Request) (int, bool) {
	y, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || y < 1 || y > 9999 {
		return 0, false
	}
	return y, true
}

// pathMonth reads the zero-based {month} URL parameter.
func pathMonth(r *http.Request) (int, bool) {
	m, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || m < 0 || m > 11 {
		return 0, false
	}
	return m, true
}
