package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Tier1 Tier = "Tier 1"
	Tier2 Tier = "Tier 2"
	Tier3 Tier = "Tier 3"
)

const (
	KindSub      ActivityKind = "sub"
	KindGiftSub  ActivityKind = "gift_sub"
	KindDonation ActivityKind = "donation"
	KindPrimeSub ActivityKind = "prime_sub"
)

// DateLayout is the calendar date format used for stream logs.
const DateLayout = "2006-01-02"

const (
	maxNameLength  = 100
	maxTitleLength = 200
)

type (
	// Tier is one of the three fixed subscription price levels.
	Tier string

	// ActivityKind tags the variant of an Activity.
	ActivityKind string

	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	// Header identifies a stream session before it has any activity.
	Header struct {
		StreamerName string
		Date         Date
		StreamTitle  string
	}

	// ActivityPayload is an activity as entered, before an id and a
	// timestamp are assigned. Tier and Count apply to sub and gift_sub,
	// Amount to donation; prime_sub carries no extra fields.
	ActivityPayload struct {
		Kind     ActivityKind
		Username string
		Tier     Tier
		Count    int
		Amount   Money
	}

	// Activity is one recorded monetization event.
	Activity struct {
		ID        string
		Timestamp time.Time
		Username  string
		Kind      ActivityKind
		Tier      Tier
		Count     int
		Amount    Money
	}

	// StreamLog is one broadcast session with its activities in entry order.
	StreamLog struct {
		ID           string     `json:"id"`
		StreamerName string     `json:"streamerName"`
		Date         Date       `json:"date"`
		StreamTitle  string     `json:"streamTitle"`
		Activities   []Activity `json:"activities"`
		LastUpdated  time.Time  `json:"lastUpdated"`
	}
)

var (
	ErrInvalidDate         = errors.New("date must be in YYYY-MM-DD format")
	ErrEmptyStreamer       = errors.New("streamer name is required")
	ErrEmptyTitle          = errors.New("stream title is required")
	ErrEmptyUsername       = errors.New("username is required")
	ErrInvalidTier         = errors.New("invalid subscription tier")
	ErrInvalidCount        = errors.New("count must be a positive integer")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnknownActivityKind = errors.New("unknown activity type")
	ErrTooLong             = errors.New("value too long")
)

var validationErrors = []error{
	ErrInvalidDate,
	ErrEmptyStreamer,
	ErrEmptyTitle,
	ErrEmptyUsername,
	ErrInvalidTier,
	ErrInvalidCount,
	ErrInvalidAmount,
	ErrUnknownActivityKind,
	ErrTooLong,
}

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AllTiers returns the tiers in display order.
func AllTiers() []Tier {
	return []Tier{Tier1, Tier2, Tier3}
}

func (t Tier) Valid() bool {
	switch t {
	case Tier1, Tier2, Tier3:
		return true
	default:
		return false
	}
}

func (k ActivityKind) Valid() bool {
	switch k {
	case KindSub, KindGiftSub, KindDonation, KindPrimeSub:
		return true
	default:
		return false
	}
}

// Label returns the human readable name used in reports.
func (k ActivityKind) Label() string {
	switch k {
	case KindSub:
		return "Subscription"
	case KindGiftSub:
		return "Gift Sub"
	case KindDonation:
		return "Donation"
	case KindPrimeSub:
		return "Prime Sub"
	default:
		return string(k)
	}
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month (1-12) and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthIndex returns the zero-based month (0 = January).
func (d Date) MonthIndex() int {
	return int(d.Month()) - 1
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseStoredDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// storedDateLayouts are accepted when decoding persisted logs. Older data
// may carry unpadded dates or full timestamps.
var storedDateLayouts = []string{DateLayout, "2006-1-2", time.RFC3339Nano}

// parseStoredDate is the lenient counterpart of ParseDate, used only for
// data that was already accepted once.
func parseStoredDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NewHeader parses the date and validates the header fields.
func NewHeader(date, streamer, title string) (Header, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		StreamerName: normalizeSpace(streamer),
		Date:         d,
		StreamTitle:  normalizeSpace(title),
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func (h Header) Validate() error {
	if err := h.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(h.StreamerName) == "" {
		return ErrEmptyStreamer
	}
	if len(h.StreamerName) > maxNameLength {
		return fmt.Errorf("streamer name: %w (max %d characters)", ErrTooLong, maxNameLength)
	}
	if strings.TrimSpace(h.StreamTitle) == "" {
		return ErrEmptyTitle
	}
	if len(h.StreamTitle) > maxTitleLength {
		return fmt.Errorf("stream title: %w (max %d characters)", ErrTooLong, maxTitleLength)
	}
	return nil
}

// Key returns the identity of the stream session described by the header.
func (h Header) Key() LogKey {
	return NewLogKey(h.Date, h.StreamerName, h.StreamTitle)
}

func (p ActivityPayload) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownActivityKind, p.Kind)
	}
	if strings.TrimSpace(p.Username) == "" {
		return ErrEmptyUsername
	}
	if len(p.Username) > maxNameLength {
		return fmt.Errorf("username: %w (max %d characters)", ErrTooLong, maxNameLength)
	}
	switch p.Kind {
	case KindSub, KindGiftSub:
		if !p.Tier.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidTier, p.Tier)
		}
		if p.Count < 1 {
			return ErrInvalidCount
		}
	case KindDonation:
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	case KindPrimeSub:
	}
	return nil
}

// Normalize trims the username and clears fields that do not belong to the kind.
func (p ActivityPayload) Normalize() ActivityPayload {
	out := ActivityPayload{Kind: p.Kind, Username: strings.TrimSpace(p.Username)}
	switch p.Kind {
	case KindSub, KindGiftSub:
		out.Tier = p.Tier
		out.Count = p.Count
	case KindDonation:
		out.Amount = p.Amount
	}
	return out
}

// NewActivity stamps a normalized payload with its id and creation time.
func NewActivity(id string, ts time.Time, p ActivityPayload) Activity {
	p = p.Normalize()
	return Activity{
		ID:        id,
		Timestamp: ts,
		Username:  p.Username,
		Kind:      p.Kind,
		Tier:      p.Tier,
		Count:     p.Count,
		Amount:    p.Amount,
	}
}

// Key returns the identity of the log, derived from its header fields.
func (l StreamLog) Key() LogKey {
	return NewLogKey(l.Date, l.StreamerName, l.StreamTitle)
}

// Header returns the immutable header part of the log.
func (l StreamLog) Header() Header {
	return Header{StreamerName: l.StreamerName, Date: l.Date, StreamTitle: l.StreamTitle}
}

// Clone returns a copy that shares no activity storage with l.
func (l StreamLog) Clone() StreamLog {
	out := l
	out.Activities = append([]Activity(nil), l.Activities...)
	if out.Activities == nil {
		out.Activities = []Activity{}
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
