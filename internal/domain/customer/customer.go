// Package customer holds the customer record, its form and the validation
// rules shared by every place that accepts customer input.
package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a server-assigned record identifier. Upstream collections hand out
// numeric ids while our own store hands out UUIDs, so both encodings are
// accepted. Encoding goes by shape: canonical integers are written as
// numbers, everything else as strings.
type ID string

// String returns the identifier text
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether no identifier has been assigned yet
func (id ID) IsZero() bool {
	return id == ""
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	if isCanonicalInt(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("customer id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func isCanonicalInt(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// Address is free text. Upstream collections may send a structured postal
// address instead, which is flattened on decode.
type Address string

type postalAddress struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '{':
		var p postalAddress
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*a = Address(p.flatten())
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("customer address must be a string or object: %w", err)
		}
		*a = Address(s)
		return nil
	}
}

func (p postalAddress) flatten() string {
	var parts []string
	for _, s := range []string{p.Street, p.Suite} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	city := strings.TrimSpace(strings.TrimSpace(p.City) + " " + strings.TrimSpace(p.Zipcode))
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

// Customer is a single customer record
type Customer struct {
	ID      ID      `json:"id,omitempty"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address,omitempty"`
}

// Clone returns a copy of the list; nil stays nil
func Clone(list []Customer) []Customer {
	if list == nil {
		return nil
	}
	out := make([]Customer, len(list))
	copy(out, list)
	return out
}

// Find returns the record with the given id
func Find(list []Customer, id ID) (Customer, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// Repository defines the persistence port for customer records
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	Get(ctx context.Context, id ID) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id ID) error
}
