package document

// Operator is a comparison applied by a query condition.
type Operator string

const (
	OpEqual          Operator = "eq"
	OpNotEqual       Operator = "ne"
	OpGreater        Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLess           Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	// OpIn matches when the field equals any element of a slice value.
	OpIn Operator = "in"
	// OpContains matches case-insensitive substring containment on string
	// fields.
	OpContains Operator = "contains"
)

// Condition compares one field against a value. The value always travels as
// data; stores never interpolate it into query text.
type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

// ConditionGroup ORs a set of conditions together. Used for free-text
// search across several fields.
type ConditionGroup struct {
	Any []Condition
}

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort specifies field and direction for sorting results. Queries that
// paginate must sort; stores tie-break on document id to keep the order
// total.
type Sort struct {
	Field string
	Order SortOrder
}

// Query is a structured, parameterized query: all top-level conditions and
// groups are AND-combined; conditions inside a group are OR-combined.
type Query struct {
	Conditions []Condition
	Groups     []ConditionGroup
	Sort       Sort
}

// Where appends an AND condition.
func (q Query) Where(field string, op Operator, value interface{}) Query {
	q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Value: value})
	return q
}

// WhereAny appends an OR group.
func (q Query) WhereAny(conditions ...Condition) Query {
	if len(conditions) == 0 {
		return q
	}
	q.Groups = append(q.Groups, ConditionGroup{Any: conditions})
	return q
}

// OrderBy sets the sort key and direction.
func (q Query) OrderBy(field string, order SortOrder) Query {
	q.Sort = Sort{Field: field, Order: order}
	return q
}

// Eq builds an equality condition.
func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEqual, Value: value}
}

// Contains builds a case-insensitive substring condition.
func Contains(field, substring string) Condition {
	return Condition{Field: field, Op: OpContains, Value: substring}
}
