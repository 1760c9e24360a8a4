package policy

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform lower -json -yaml -output kind.gen.go
//go:generate go run github.com/dmarkham/enumer -type Mode -trimprefix Mode -transform lower -json -yaml -output mode.gen.go

// Kind identifies one of the password policies an organization can carry.
type Kind int

const (
	KindComplexity Kind = iota
	KindAge
	KindLockout
)

// Tag is the YAML tag used for the kind in policy documents.
func (k Kind) Tag() string {
	return "!" + k.String()
}

// Mode selects between creating an org-specific policy and modifying an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeModify
)
