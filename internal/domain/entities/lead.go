package entities

// ContactInput is a contact form submission
type ContactInput struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"max=40"`
	Subject   string `json:"subject" binding:"required,max=200"`
	Message   string `json:"message" binding:"required,max=5000"`
}

// FullName joins first and last name
func (c ContactInput) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// LineItem is one cart entry. Price is a display string such as "R 1,500.00".
type LineItem struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Quantity int    `json:"quantity"`
}

// Customer identifies the payer on the hosted checkout page
type Customer struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
}

// SubscriptionInput is the payment link request
type SubscriptionInput struct {
	Items    []LineItem `json:"items" binding:"required,min=1,dive"`
	Customer Customer   `json:"customer" binding:"required"`
}

// PaymentLink is the hosted checkout redirect
type PaymentLink struct {
	URL       string  `json:"url"`
	Amount    float64 `json:"amount"`
	PaymentID string  `json:"paymentId"`
	Sandbox   bool    `json:"sandbox"`
}
