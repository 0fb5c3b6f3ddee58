package kegg

import (
	"sort"
	"strings"
)

// databaseSet is an enumerated set of valid database names for one
// operation. Sets are fixed at startup and only read afterwards.
type databaseSet map[string]struct{}

func newSet(names ...string) databaseSet {
	s := make(databaseSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s databaseSet) contains(name string) bool {
	_, ok := s[name]
	return ok
}

// sortedJoin renders the set as KEGG's error messages do: sorted and
// comma-joined.
func (s databaseSet) sortedJoin() string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (s databaseSet) union(others ...databaseSet) databaseSet {
	u := make(databaseSet, len(s))
	for n := range s {
		u[n] = struct{}{}
	}
	for _, o := range others {
		for n := range o {
			u[n] = struct{}{}
		}
	}
	return u
}

func (s databaseSet) without(names ...string) databaseSet {
	u := make(databaseSet, len(s))
	for n := range s {
		u[n] = struct{}{}
	}
	for _, n := range names {
		delete(u, n)
	}
	return u
}

// The KEGG databases accepted across operations. Which subset an operation
// accepts is KEGG's own convention, reproduced here set by set.
var (
	// standardDatabases are accepted by most operations.
	standardDatabases = newSet(
		"pathway", "brite", "module", "ko", "genome", "vg", "vp", "ag",
		"compound", "glycan", "reaction", "rclass", "enzyme", "network",
		"variant", "disease", "drug", "dgroup",
	)

	// medicusDatabases are the KEGG MEDICUS extensions, valid only for the
	// list, find, and link operations.
	medicusDatabases = newSet(
		"brite_ja", "compound_ja", "dgroup_ja", "disease_ja", "drug_ja",
		"atc", "jtc", "ndc", "yj",
	)

	listDatabases = standardDatabases.union(medicusDatabases, newSet("organism"))

	infoDatabases = standardDatabases.union(newSet("genes", "kegg", "ligand"))

	keywordsFindDatabases = standardDatabases.without("brite").
				union(medicusDatabases, newSet("genes", "ligand"))

	molecularFindDatabases = newSet("compound", "drug")

	// conv: the KEGG side is either an organism (gene category) or one of the
	// molecule databases; the outside side must match the category.
	convKeggDatabases        = newSet("compound", "drug", "glycan")
	convGeneOutsideDatabases = newSet("ncbi-geneid", "ncbi-proteinid", "uniprot")
	convMoleculeOutsideDatabases = newSet("pubchem", "chebi")
	convOutsideDatabases         = convGeneOutsideDatabases.union(convMoleculeOutsideDatabases)
	convEntriesTargetDatabases   = convKeggDatabases.union(convOutsideDatabases, newSet("genes"))

	databaseLinkDatabases = standardDatabases.union(newSet("atc", "jtc", "ndc", "yj", "pubmed"))
	entriesLinkDatabases  = databaseLinkDatabases.union(newSet("genes"))
)

// Entry fields accepted by the get operation. The boolean marks whether the
// field supports multiple entry IDs in a single request.
var getEntryFields = map[string]bool{
	"aaseq": true,
	"ntseq": true,
	"mol":   true,
	"kcf":   true,
	"image": false,
	"conf":  false,
	"kgml":  false,
	"json":  false,
}

// CanOnlyPullOneEntry reports whether entryField restricts get requests to a
// single KEGG entry at a time. An empty field means the default flat-file
// format, which supports batching.
func CanOnlyPullOneEntry(entryField string) bool {
	multi, ok := getEntryFields[entryField]
	return ok && !multi
}

// IsBinaryField reports whether entryField yields a binary response body.
// Only "image" does; every other field is text.
func IsBinaryField(entryField string) bool {
	return entryField == "image"
}

func sortedFieldNames() string {
	names := make([]string, 0, len(getEntryFields))
	for n := range getEntryFields {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
