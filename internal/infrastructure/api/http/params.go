package http

const (
	ReferenceParam = "reference"
	CountryParam   = "country"

	SignatureHeader = "X-Paystack-Signature"
)
