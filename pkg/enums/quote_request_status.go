package enums

import "fmt"

// QuoteRequestStatus tracks the sales follow-up state of a stored RFQ.
type QuoteRequestStatus string

const (
	QuoteRequestStatusNew      QuoteRequestStatus = "new"
	QuoteRequestStatusQuoted   QuoteRequestStatus = "quoted"
	QuoteRequestStatusDeclined QuoteRequestStatus = "declined"
)

var validQuoteRequestStatuses = []QuoteRequestStatus{
	QuoteRequestStatusNew,
	QuoteRequestStatusQuoted,
	QuoteRequestStatusDeclined,
}

// String implements fmt.Stringer.
func (s QuoteRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteRequestStatus.
func (s QuoteRequestStatus) IsValid() bool {
	for _, candidate := range validQuoteRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseQuoteRequestStatus converts raw input into a QuoteRequestStatus.
func ParseQuoteRequestStatus(value string) (QuoteRequestStatus, error) {
	for _, candidate := range validQuoteRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote request status %q", value)
}
