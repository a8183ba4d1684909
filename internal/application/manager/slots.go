package manager

import "github.com/contactdesk/backend/internal/domain/customer"

// Slot names as they appear in logs and snapshots
const (
	PrimarySlotName   = "customers"
	SecondarySlotName = "cachedCustomers"
)

const primaryContract = "customers is the working set. CRUD handlers, the server load, " +
	"the durable mirror reconciliation and the restore-from-cache rule all write it; last write wins."

const secondaryContract = "cachedCustomers has no consistency guarantee with customers. " +
	"It receives a delayed copy after each change to customers and an append on create. " +
	"Update and delete never touch it, so stale and phantom records are expected."

type slot struct {
	name     string
	items    []customer.Customer
	onChange func()
}

// Name returns the slot label
func (s *slot) Name() string { return s.name }

// Len returns the number of records
func (s *slot) Len() int { return len(s.items) }

// Items returns a copy of the records
func (s *slot) Items() []customer.Customer { return customer.Clone(s.items) }

// every assignment counts as a change, even when the content is equal
func (s *slot) assign(items []customer.Customer) {
	s.items = items
	if s.onChange != nil {
		s.onChange()
	}
}

// PrimarySlot is the working customer list.
type PrimarySlot struct {
	slot
}

func newPrimarySlot(onChange func()) *PrimarySlot {
	return &PrimarySlot{slot{name: PrimarySlotName, items: []customer.Customer{}, onChange: onChange}}
}

// Contract describes what the slot does and does not promise
func (p *PrimarySlot) Contract() string { return primaryContract }

// Replace swaps the whole list
func (p *PrimarySlot) Replace(list []customer.Customer) {
	items := customer.Clone(list)
	if items == nil {
		items = []customer.Customer{}
	}
	p.assign(items)
}

// Append adds a record at the end
func (p *PrimarySlot) Append(c customer.Customer) {
	p.assign(append(p.Items(), c))
}

// Update replaces the record with the same ID. It reports whether one matched;
// the list is reassigned either way.
func (p *PrimarySlot) Update(c customer.Customer) bool {
	next := p.Items()
	found := false
	for i := range next {
		if next[i].ID == c.ID {
			next[i] = c
			found = true
		}
	}
	p.assign(next)
	return found
}

// Remove drops every record with id and reports whether any matched
func (p *PrimarySlot) Remove(id customer.ID) bool {
	next := make([]customer.Customer, 0, len(p.items))
	for _, c := range p.items {
		if c.ID != id {
			next = append(next, c)
		}
	}
	removed := len(next) != len(p.items)
	p.assign(next)
	return removed
}

// SecondarySlot is the delayed cache of the working list. It can only be
// overwritten from the primary slot or appended to.
type SecondarySlot struct {
	slot
}

func newSecondarySlot(onChange func()) *SecondarySlot {
	return &SecondarySlot{slot{name: SecondarySlotName, items: []customer.Customer{}, onChange: onChange}}
}

// Contract describes what the slot does and does not promise
func (s *SecondarySlot) Contract() string { return secondaryContract }

// CopyFrom overwrites the cache with the primary slot's current records
func (s *SecondarySlot) CopyFrom(p *PrimarySlot) {
	s.assign(p.Items())
}

// Append adds a record at the end
func (s *SecondarySlot) Append(c customer.Customer) {
	s.assign(append(s.Items(), c))
}
