package card

import "time"

// Card is a credit card account. Its Number is the stable external key the
// balance ledger is addressed by; ID is internal.
type Card struct {
    ID           string
    UserID       string
    IssuanceBank string
    Number       string
    CreatedAt    time.Time
}

// View is the public projection of a card.
type View struct {
    IssuanceBank string `json:"issuance_bank"`
    Number       string `json:"number"`
}
