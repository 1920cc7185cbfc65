package dto

type CheckoutItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	CustomerEmail string         `json:"customer_email"`
	CustomerName  string         `json:"customer_name"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type DonationRequest struct {
	Amount     int64  `json:"amount"`
	DonorEmail string `json:"donor_email"`
	DonorName  string `json:"donor_name"`
	Dedication string `json:"dedication,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ApplicationRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	TargetRef string `json:"target_ref"`
	Message   string `json:"message"`
}

type ApplicationDecision struct {
	Status string `json:"status"`
}

type SettingsUpdate struct {
	SiteTitle     *string  `json:"site_title,omitempty"`
	ContactEmail  *string  `json:"contact_email,omitempty"`
	ReceiptFooter *string  `json:"receipt_footer,omitempty"`
	AdminEmails   []string `json:"admin_emails,omitempty"`
}
