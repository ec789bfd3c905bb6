package types

// Standard table names for Cupboard.GetTable.
const (
	TableFruits = "fruits"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableFruits,
}
