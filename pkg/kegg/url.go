// Package kegg models validated request URLs for the KEGG REST API.
//
// Each REST operation (list, get, info, find, conv, link, ddi) has a builder
// method that validates its operation-specific inputs against KEGG's rules
// and renders the canonical URL. A [URL] is never constructible in an
// invalid state: validation happens before rendering, and rendering is pure
// given valid fields.
//
// Database names that are not in an operation's enumerated set fall back to
// membership in the lazily fetched [Organisms] set, mirroring KEGG's <org>
// placeholder.
package kegg

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
)

// BaseURL is the production KEGG REST API endpoint.
const BaseURL = "https://rest.kegg.jp"

// MaxEntryIDsPerURL is KEGG's limit on entry IDs per get request.
const MaxEntryIDsPerURL = 10

// maxURLLength is the absolute ceiling KEGG accepts for a request URL.
const maxURLLength = 4000

// Operation identifies one KEGG REST verb form.
type Operation int

const (
	OpList Operation = iota
	OpGet
	OpInfo
	OpKeywordsFind
	OpMolecularFind
	OpDatabaseConv
	OpEntriesConv
	OpDatabaseLink
	OpEntriesLink
	OpDdi
)

var operationNames = map[Operation]string{
	OpList:          "list",
	OpGet:           "get",
	OpInfo:          "info",
	OpKeywordsFind:  "find",
	OpMolecularFind: "find",
	OpDatabaseConv:  "conv",
	OpEntriesConv:   "conv",
	OpDatabaseLink:  "link",
	OpEntriesLink:   "link",
	OpDdi:           "ddi",
}

// String returns the REST verb for the operation.
func (o Operation) String() string { return operationNames[o] }

// URL is an immutable, validated KEGG request URL.
type URL struct {
	op         Operation
	url        string
	entryIDs   []string
	entryField string
}

// Operation returns which REST operation the URL performs.
func (u *URL) Operation() Operation { return u.op }

// String returns the fully rendered URL.
func (u *URL) String() string { return u.url }

// EntryIDs returns the entry IDs the URL requests (get, conv entries, link
// entries, and ddi forms only).
func (u *URL) EntryIDs() []string { return u.entryIDs }

// EntryField returns the requested entry field for a get URL, or "" for the
// default flat-file format.
func (u *URL) EntryField() string { return u.entryField }

// MultipleEntryIDs reports whether the URL requests more than one entry.
func (u *URL) MultipleEntryIDs() bool { return len(u.entryIDs) > 1 }

// Builder constructs validated KEGG URLs. The zero value is not usable;
// create one with NewBuilder.
//
// The builder holds the organism set used for <org> fallback validation and
// the logger used for the molecular-find attribute-priority warnings.
type Builder struct {
	baseURL   string
	organisms *Organisms
	logger    *log.Logger
}

// NewBuilder creates a Builder targeting baseURL (the production endpoint if
// empty). Pass nil for organisms to create a default, non-persistent
// organism set against the same base URL, and nil for logger to use
// log.Default().
func NewBuilder(baseURL string, organisms *Organisms, logger *log.Logger) *Builder {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if organisms == nil {
		organisms = NewOrganisms(baseURL, nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{baseURL: baseURL, organisms: organisms, logger: logger}
}

// Organisms returns the organism set the builder validates against.
func (b *Builder) Organisms() *Organisms { return b.organisms }

func (b *Builder) render(op Operation, ids []string, field string, options ...string) (*URL, error) {
	u := b.baseURL + "/" + op.String() + "/" + strings.Join(options, "/")
	if len(u) > maxURLLength {
		return nil, invalid("The KEGG URL length of %d exceeds the limit of %d", len(u), maxURLLength)
	}
	return &URL{op: op, url: u, entryIDs: ids, entryField: field}, nil
}

func invalid(format string, args ...any) error {
	return kerrors.New(kerrors.ErrCodeInvalidURL, "Cannot create URL - "+format, args...)
}

// validateDatabase checks value against the enumerated set, falling back to
// organism-set membership. The failure message lists the sorted set with the
// <org> hint.
func (b *Builder) validateDatabase(optionName, value string, valid databaseSet) error {
	if valid.contains(value) {
		return nil
	}
	ok, err := b.organisms.Contains(value)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return invalid(
		`Invalid %s: "%s". Valid values are: <org>, %s. Where <org> is an organism code or T number.`,
		optionName, value, valid.sortedJoin())
}

// List builds a "list" URL for the given database.
func (b *Builder) List(database string) (*URL, error) {
	if err := b.validateDatabase("database name", database, listDatabases); err != nil {
		return nil, err
	}
	return b.render(OpList, nil, "", database)
}

// Info builds an "info" URL for the given database.
func (b *Builder) Info(database string) (*URL, error) {
	if err := b.validateDatabase("database name", database, infoDatabases); err != nil {
		return nil, err
	}
	return b.render(OpInfo, nil, "", database)
}

// Get builds a "get" URL for 1 to MaxEntryIDsPerURL entry IDs with an
// optional entry field ("" for the default flat-file format).
func (b *Builder) Get(entryIDs []string, entryField string) (*URL, error) {
	if len(entryIDs) == 0 {
		return nil, invalid("Entry IDs must be specified for the KEGG get operation")
	}
	if len(entryIDs) > MaxEntryIDsPerURL {
		return nil, invalid("The maximum number of entry IDs is %d but %d were provided", MaxEntryIDsPerURL, len(entryIDs))
	}
	if entryField != "" {
		if _, ok := getEntryFields[entryField]; !ok {
			return nil, invalid(`Invalid KEGG entry field: "%s". Valid values are: %s.`, entryField, sortedFieldNames())
		}
		if CanOnlyPullOneEntry(entryField) && len(entryIDs) > 1 {
			return nil, invalid(
				`The KEGG entry field: "%s" only supports requests of one KEGG entry at a time but %d entry IDs are provided`,
				entryField, len(entryIDs))
		}
	}
	options := []string{strings.Join(entryIDs, "+")}
	if entryField != "" {
		options = append(options, entryField)
	}
	return b.render(OpGet, entryIDs, entryField, options...)
}

// KeywordsFind builds a "find" URL searching database entries by keywords.
func (b *Builder) KeywordsFind(database string, keywords []string) (*URL, error) {
	if len(keywords) == 0 {
		return nil, invalid("No search keywords specified")
	}
	if err := b.validateDatabase("database name", database, keywordsFindDatabases); err != nil {
		return nil, err
	}
	return b.render(OpKeywordsFind, nil, "", database, strings.Join(keywords, "+"))
}

// MolecularFindQuery selects exactly one molecular attribute to search by.
// If more than one attribute is set, the chemical formula takes priority
// over the exact mass, which takes priority over the molecular weight; a
// warning names which attribute was chosen.
//
// ExactMass and MolecularWeight each accept one value or a two-value range;
// they are provided as slices so callers can distinguish "absent" (nil) from
// a malformed empty range.
type MolecularFindQuery struct {
	Formula         string
	ExactMass       []float64
	MolecularWeight []int
}

// MolecularFind builds a "find" URL searching the compound or drug database
// by one molecular attribute.
func (b *Builder) MolecularFind(database string, query MolecularFindQuery) (*URL, error) {
	if !molecularFindDatabases.contains(database) {
		return nil, invalid(`Invalid molecular database name: "%s". Valid values are: %s.`,
			database, molecularFindDatabases.sortedJoin())
	}

	hasFormula := query.Formula != ""
	hasMass := query.ExactMass != nil
	hasWeight := query.MolecularWeight != nil

	switch {
	case !hasFormula && !hasMass && !hasWeight:
		return nil, invalid("Must provide either a chemical formula, exact mass, or molecular weight option")
	case hasFormula:
		if hasMass || hasWeight {
			b.logger.Warn("Only a chemical formula, exact mass, or molecular weight is used to construct the URL. Using formula...")
		}
		return b.render(OpMolecularFind, nil, "", database, query.Formula, "formula")
	case hasMass:
		if hasWeight {
			b.logger.Warn("Both an exact mass and molecular weight are provided. Using exact mass...")
		}
		option, err := rangeOption("Exact mass", query.ExactMass, formatFloat)
		if err != nil {
			return nil, err
		}
		return b.render(OpMolecularFind, nil, "", database, option, "exact_mass")
	default:
		option, err := rangeOption("Molecular weight", query.MolecularWeight, strconv.Itoa)
		if err != nil {
			return nil, err
		}
		return b.render(OpMolecularFind, nil, "", database, option, "mol_weight")
	}
}

// rangeOption renders a single value or a strictly increasing two-value
// range as KEGG expects ("155.5" or "155.5-244.4").
func rangeOption[T int | float64](attribute string, values []T, format func(T) string) (string, error) {
	switch len(values) {
	case 1:
		return format(values[0]), nil
	case 2:
		if values[0] >= values[1] {
			return "", invalid("The first value in the range must be less than the second. Values provided: %s-%s",
				format(values[0]), format(values[1]))
		}
		return format(values[0]) + "-" + format(values[1]), nil
	default:
		rendered := make([]string, len(values))
		for i, v := range values {
			rendered[i] = format(v)
		}
		return "", invalid("%s range can only be constructed from 2 values but %d are provided: %s",
			attribute, len(values), strings.Join(rendered, ", "))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DatabaseConv builds a "conv" URL converting all entry IDs between a KEGG
// database and an outside database. The KEGG side is either an organism
// (gene category) or a molecule database; the outside database must belong
// to the same category.
func (b *Builder) DatabaseConv(keggDatabase, outsideDatabase string) (*URL, error) {
	if err := b.validateDatabase("KEGG database", keggDatabase, convKeggDatabases); err != nil {
		return nil, err
	}
	if !convOutsideDatabases.contains(outsideDatabase) {
		return nil, invalid(`Invalid outside database: "%s". Valid values are: %s.`,
			outsideDatabase, convOutsideDatabases.sortedJoin())
	}

	if convKeggDatabases.contains(keggDatabase) {
		if !convMoleculeOutsideDatabases.contains(outsideDatabase) {
			return nil, invalid(`KEGG database "%s" is a molecule database but outside database "%s" is not.`,
				keggDatabase, outsideDatabase)
		}
	} else if !convGeneOutsideDatabases.contains(outsideDatabase) {
		return nil, invalid(`KEGG database "%s" is a gene database but outside database "%s" is not.`,
			keggDatabase, outsideDatabase)
	}
	return b.render(OpDatabaseConv, nil, "", keggDatabase, outsideDatabase)
}

// EntriesConv builds a "conv" URL converting specific entry IDs to their
// equivalents in the target database.
func (b *Builder) EntriesConv(targetDatabase string, entryIDs []string) (*URL, error) {
	if err := b.validateDatabase("target database", targetDatabase, convEntriesTargetDatabases); err != nil {
		return nil, err
	}
	if len(entryIDs) == 0 {
		return nil, invalid(`Entry IDs must be specified for this KEGG "conv" operation`)
	}
	return b.render(OpEntriesConv, entryIDs, "", targetDatabase, strings.Join(entryIDs, "+"))
}

// DatabaseLink builds a "link" URL cross-referencing all entries of the
// source database against the target database.
func (b *Builder) DatabaseLink(targetDatabase, sourceDatabase string) (*URL, error) {
	if err := b.validateDatabase("database name", targetDatabase, databaseLinkDatabases); err != nil {
		return nil, err
	}
	if err := b.validateDatabase("database name", sourceDatabase, databaseLinkDatabases); err != nil {
		return nil, err
	}
	if targetDatabase == sourceDatabase {
		return nil, invalid("The source and target database cannot be identical. Database selected: %s.", targetDatabase)
	}
	return b.render(OpDatabaseLink, nil, "", targetDatabase, sourceDatabase)
}

// EntriesLink builds a "link" URL cross-referencing specific entry IDs
// against the target database.
func (b *Builder) EntriesLink(targetDatabase string, entryIDs []string) (*URL, error) {
	if err := b.validateDatabase("database name", targetDatabase, entriesLinkDatabases); err != nil {
		return nil, err
	}
	if len(entryIDs) == 0 {
		return nil, invalid("At least one entry ID must be specified to perform the link operation")
	}
	return b.render(OpEntriesLink, entryIDs, "", targetDatabase, strings.Join(entryIDs, "+"))
}

// Ddi builds a "ddi" URL reporting drug-drug interactions for the given
// drug entry IDs.
func (b *Builder) Ddi(drugEntryIDs []string) (*URL, error) {
	if len(drugEntryIDs) == 0 {
		return nil, invalid("At least one drug entry ID must be specified for the DDI operation")
	}
	return b.render(OpDdi, drugEntryIDs, "", strings.Join(drugEntryIDs, "+"))
}
