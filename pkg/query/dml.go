package query

// Per-table DML constructors. These are a deliberately simpler side path
// than the pipeline language: one table, explicit column lists, and an
// optional pre-built condition sequence. Every target column becomes a
// named parameter so the renderers can emit dialect placeholders.

// NewInsert builds an INSERT statement for the given table and columns.
func NewInsert(table string, columns []string) *Statement {
	stmt := &Statement{
		Kind:    KindInsert,
		Tables:  []Table{{Name: table}},
		Columns: append([]string(nil), columns...),
	}
	stmt.harvestColumns(columns)
	return stmt
}

// NewUpdate builds an UPDATE statement setting the given columns,
// restricted by the optional condition sequence.
func NewUpdate(table string, columns []string, where []Condition) *Statement {
	stmt := &Statement{
		Kind:    KindUpdate,
		Tables:  []Table{{Name: table}},
		Columns: append([]string(nil), columns...),
		Where:   where,
	}
	stmt.harvestColumns(columns)
	stmt.harvestConditions(where)
	return stmt
}

// NewDelete builds a DELETE statement restricted by the optional
// condition sequence.
func NewDelete(table string, where []Condition) *Statement {
	stmt := &Statement{
		Kind:   KindDelete,
		Tables: []Table{{Name: table}},
		Where:  where,
	}
	stmt.harvestConditions(where)
	return stmt
}

// harvestColumns registers one parameter per target column.
func (s *Statement) harvestColumns(columns []string) {
	for _, c := range columns {
		s.addParam(c)
	}
}

// harvestConditions registers parameters referenced by a condition
// sequence, in appearance order.
func (s *Statement) harvestConditions(conds []Condition) {
	for _, c := range conds {
		cmp, ok := c.(Comparison)
		if !ok {
			continue
		}
		if p, ok := cmp.Right.(ParamOperand); ok {
			s.addParam(p.Name)
		}
	}
}

// addParam appends a parameter unless the name is already registered.
func (s *Statement) addParam(name string) {
	for _, p := range s.Params {
		if p.Name == name {
			return
		}
	}
	s.Params = append(s.Params, Param{Name: name, SQLType: DefaultParamType})
}
