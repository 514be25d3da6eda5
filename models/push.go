package models

// PushIntent is the short token a push notification carries to tell the app
// what to do once foregrounded.
type PushIntent string

const (
	IntentSlotFillOffer        PushIntent = "slot_fill_offer"
	IntentAppointmentCancelled PushIntent = "appointment_cancelled"
	IntentAppointmentProposal  PushIntent = "appointment_proposal"
)

// Notification is a received push payload, already decoded from the platform
// envelope. The intent kind travels in Data under the "type" key.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// PushRegistration binds this install's push token to the signed-in account
// so the backend can target it.
type PushRegistration struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
	DeviceID string `json:"deviceId,omitempty"`
}

// Intent extracts the push intent kind, if any.
func (n Notification) Intent() (PushIntent, bool) {
	if n.Data == nil {
		return "", false
	}
	kind, ok := n.Data["type"]
	if !ok || kind == "" {
		return "", false
	}
	return PushIntent(kind), true
}
