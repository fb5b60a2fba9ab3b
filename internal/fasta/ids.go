package fasta

import "regexp"

// IDType classifies an identifier for routing to the right database.
type IDType string

const (
	TypePDB     IDType = "pdb"
	TypeUniProt IDType = "uniprot"
	TypeUnknown IDType = "unknown"
)

var (
	pdbPattern = regexp.MustCompile(`^[A-Za-z0-9]{4}$`)

	// UniProt accession numbers: 6 or 10 characters with the positional
	// alphabet the UniProt documentation prescribes.
	uniprotAccession = regexp.MustCompile(
		`^([OPQ][0-9][A-Z0-9]{3}[0-9]|[A-NR-Z][0-9]([A-Z][A-Z0-9]{2}[0-9]){1,2})$`)

	// UniProt entry names: 1-11 uppercase alphanumerics and underscores,
	// e.g. P53_HUMAN.
	uniprotEntry = regexp.MustCompile(`^[A-Z0-9_]{1,11}$`)
)

// ValidPDBID reports whether id looks like a PDB entry id (4 alphanumerics).
func ValidPDBID(id string) bool {
	return pdbPattern.MatchString(id)
}

// ValidUniProtID reports whether id looks like a UniProt accession number or
// entry name.
func ValidUniProtID(id string) bool {
	if id == "" {
		return false
	}
	return uniprotAccession.MatchString(id) || uniprotEntry.MatchString(id)
}

// Classify decides which database an identifier addresses. PDB wins when
// both patterns would match (4-character uppercase ids are ambiguous).
func Classify(id string) IDType {
	switch {
	case ValidPDBID(id):
		return TypePDB
	case ValidUniProtID(id):
		return TypeUniProt
	default:
		return TypeUnknown
	}
}
