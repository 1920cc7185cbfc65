package model

// Settings is a singleton document: one per deployment under a fixed ID,
// lazily created with defaults on first read.
type Settings struct {
	ID            string   `json:"_id"`
	Rev           string   `json:"_rev,omitempty"`
	Type          string   `json:"_type"`
	SiteTitle     string   `json:"siteTitle"`
	ContactEmail  string   `json:"contactEmail"`
	ReceiptFooter string   `json:"receiptFooter"`
	AdminEmails   []string `json:"adminEmails,omitempty"`
}

const (
	SettingsDocType = "settings"
	SettingsDocID   = "settings"
)

func DefaultSettings() *Settings {
	return &Settings{
		ID:            SettingsDocID,
		Type:          SettingsDocType,
		SiteTitle:     "Club Store",
		ContactEmail:  "",
		ReceiptFooter: "Thank you for supporting the club.",
	}
}
