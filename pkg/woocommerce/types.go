package woocommerce

// Product is the subset of the wc/v3 product resource the storefront reads.
type Product struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Permalink        string        `json:"permalink"`
	Price            FlexString    `json:"price"`
	RegularPrice     FlexString    `json:"regular_price"`
	SalePrice        FlexString    `json:"sale_price"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Images           []Image       `json:"images"`
	Categories       []CategoryRef `json:"categories"`
	StockStatus      string        `json:"stock_status"`
	StockQuantity    *int          `json:"stock_quantity"`
	AverageRating    FlexString    `json:"average_rating"`
	MetaData         []MetaData    `json:"meta_data"`
}

type Image struct {
	ID   int    `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MetaData is a free-form key/value entry. Value keeps whatever JSON shape
// the store saved: string, number, list or object.
type MetaData struct {
	ID    int    `json:"id,omitempty"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ProductPage is one page of products plus the store's own totals.
type ProductPage struct {
	Products   []Product
	Total      int
	TotalPages int
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int    `json:"parent"`
	Description string `json:"description"`
	Image       *Image `json:"image"`
	Count       int    `json:"count"`
}

type CategoryPage struct {
	Categories []Category
	Total      int
	TotalPages int
}

// Address is shared by customer and order billing/shipping blocks.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Customer struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CustomerInput struct {
	Email     string   `json:"email"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Billing   *Address `json:"billing,omitempty"`
	Shipping  *Address `json:"shipping,omitempty"`
}

type LineItem struct {
	ProductID   int    `json:"product_id"`
	VariationID int    `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal,omitempty"`
	Total       string `json:"total,omitempty"`
}

type OrderInput struct {
	CustomerID         int        `json:"customer_id,omitempty"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	SetPaid            bool       `json:"set_paid"`
	TransactionID      string     `json:"transaction_id,omitempty"`
	Billing            *Address   `json:"billing,omitempty"`
	Shipping           *Address   `json:"shipping,omitempty"`
	LineItems          []LineItem `json:"line_items"`
	CustomerNote       string     `json:"customer_note,omitempty"`
	MetaData           []MetaData `json:"meta_data,omitempty"`
}

type Order struct {
	ID       int        `json:"id"`
	Number   string     `json:"number"`
	Status   string     `json:"status"`
	Total    FlexString `json:"total"`
	Currency string     `json:"currency"`
}
