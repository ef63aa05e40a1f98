package models

type InquiryKind string

const (
	InquiryContact       InquiryKind = "contact"
	InquiryBirthdayParty InquiryKind = "birthday_party"
)

// Inquiry is a free-form contact or party request forwarded to the studio.
type Inquiry struct {
	Kind       InquiryKind `json:"kind" schema:"kind" validate:"required,oneof=contact birthday_party"`
	Name       string      `json:"name" schema:"name" validate:"required,max=120"`
	Email      string      `json:"email" schema:"email" validate:"required,email"`
	Phone      string      `json:"phone" schema:"phone,omitempty" validate:"omitempty,max=40"`
	ChildName  string      `json:"childName,omitempty" schema:"childName,omitempty" validate:"omitempty,max=120"`
	PartyDate  string      `json:"partyDate,omitempty" schema:"partyDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GuestCount int         `json:"guestCount,omitempty" schema:"guestCount,omitempty" validate:"omitempty,gte=1,lte=60"`
	Message    string      `json:"message" schema:"message" validate:"required,max=4000"`
}
