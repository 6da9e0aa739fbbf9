package table

// UserError is an error safe to relay verbatim to a client: a protocol
// or policy violation, not an internal fault.
type UserError string

func (e UserError) Error() string {
	return string(e)
}
