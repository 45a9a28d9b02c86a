package events

// Kind is the closed set of lifecycle events every document type emits.
type Kind int

const (
	KindCreated Kind = iota + 1
	KindUpdated
	KindSigned
	KindDeleted
	KindRevisionApplied
)

var kindSuffixes = map[Kind]string{
	KindCreated:         "Created",
	KindUpdated:         "Updated",
	KindSigned:          "Signed",
	KindDeleted:         "Deleted",
	KindRevisionApplied: "RevisionRequestApplied",
}

func (k Kind) String() string {
	if s, ok := kindSuffixes[k]; ok {
		return s
	}
	return "Unknown"
}

// Vocabulary maps a document type's event type strings ("BsdaSigned") to kinds.
type Vocabulary struct {
	prefix string
	kinds  map[string]Kind
}

func NewVocabulary(prefix string) Vocabulary {
	kinds := make(map[string]Kind, len(kindSuffixes))
	for k, suffix := range kindSuffixes {
		kinds[prefix+suffix] = k
	}
	return Vocabulary{prefix: prefix, kinds: kinds}
}

func (v Vocabulary) Prefix() string { return v.prefix }

// Type returns the event type string for k.
func (v Vocabulary) Type(k Kind) string {
	return v.prefix + k.String()
}

// Kind resolves an event type string. ok is false for types outside the vocabulary.
func (v Vocabulary) Kind(eventType string) (Kind, bool) {
	k, ok := v.kinds[eventType]
	return k, ok
}
