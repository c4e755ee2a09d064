package core

import (
	"encoding/json"
	"time"
)

// activityJSON is the stored layout of an activity. Fields that do not
// apply to the kind are omitted.
type activityJSON struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Username  string       `json:"username"`
	Type      ActivityKind `json:"type"`
	Tier      Tier         `json:"tier,omitempty"`
	Count     int          `json:"count,omitempty"`
	Amount    *Money       `json:"amount,omitempty"`
}

func (a Activity) MarshalJSON() ([]byte, error) {
	out := activityJSON{
		ID:        a.ID,
		Timestamp: a.Timestamp,
		Username:  a.Username,
		Type:      a.Kind,
	}
	switch a.Kind {
	case KindSub, KindGiftSub:
		out.Tier = a.Tier
		out.Count = a.Count
	case KindDonation:
		amount := a.Amount
		out.Amount = &amount
	}
	return json.Marshal(out)
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	var in activityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Activity{
		ID:        in.ID,
		Timestamp: in.Timestamp,
		Username:  in.Username,
		Kind:      in.Type,
		Tier:      in.Tier,
		Count:     in.Count,
	}
	if in.Amount != nil {
		a.Amount = *in.Amount
	}
	return nil
}

// Payload returns the user-entered part of the activity.
func (a Activity) Payload() ActivityPayload {
	return ActivityPayload{
		Kind:     a.Kind,
		Username: a.Username,
		Tier:     a.Tier,
		Count:    a.Count,
		Amount:   a.Amount,
	}
}
