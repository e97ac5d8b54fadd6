package model

// DefaultValidityYears is the validity window of a published certificate
// when no other value was configured.
const DefaultValidityYears = 3

// CertificateSettings are the issuance settings stored in the key-value store.
type CertificateSettings struct {
	// CertifyingBody is printed on certificates of non-default template variants.
	CertifyingBody string `json:"certifying_body"`
	// ValidityYears is added to the certificate creation time to compute its expiry.
	ValidityYears int `json:"validity_years"`
	// RoleLabel is printed beneath the signature when the training has no
	// signatory title.
	RoleLabel string `json:"role_label"`
}
