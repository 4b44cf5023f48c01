package revshare

import "fmt"

// OwnedTable restricts mutation of a Table to a single owner identity.
// Reads go through Table().
type OwnedTable struct {
	owner string
	table *Table
}

// NewOwnedTable wraps t with owner as the only identity allowed to mutate it.
func NewOwnedTable(owner string, t *Table) (*OwnedTable, error) {
	if owner == "" {
		return nil, ErrEmptyOwner
	}
	return &OwnedTable{owner: owner, table: t}, nil
}

// Owner returns the current owner, or "" once ownership is renounced.
func (o *OwnedTable) Owner() string { return o.owner }

// Table returns the wrapped table.
func (o *OwnedTable) Table() *Table { return o.table }

// Add adds a payment pointer on behalf of caller.
func (o *OwnedTable) Add(caller, name string, weight uint64) (uint64, error) {
	if err := o.checkOwner(caller); err != nil {
		return 0, err
	}
	return o.table.Add(name, weight)
}

// Remove removes the entry at key on behalf of caller.
func (o *OwnedTable) Remove(caller string, key uint64) error {
	if err := o.checkOwner(caller); err != nil {
		return err
	}
	return o.table.Remove(key)
}

// TransferOwnership hands the table to newOwner.
func (o *OwnedTable) TransferOwnership(caller, newOwner string) error {
	if err := o.checkOwner(caller); err != nil {
		return err
	}
	if newOwner == "" {
		return ErrEmptyOwner
	}
	o.owner = newOwner
	return nil
}

// RenounceOwnership leaves the table without an owner. No further
// mutation is possible through o.
func (o *OwnedTable) RenounceOwnership(caller string) error {
	if err := o.checkOwner(caller); err != nil {
		return err
	}
	o.owner = ""
	return nil
}

// Authorize reports whether caller may mutate the table, returning
// ErrNotOwner if not.
func (o *OwnedTable) Authorize(caller string) error {
	return o.checkOwner(caller)
}

func (o *OwnedTable) checkOwner(caller string) error {
	if o.owner == "" || caller != o.owner {
		return fmt.Errorf("%w: %q", ErrNotOwner, caller)
	}
	return nil
}
