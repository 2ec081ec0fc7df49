package openapi

// Counts holds the structural totals of a document, summed over every
// (path, method) pair.
type Counts struct {
	Paths              int
	Operations         int
	PathResponses      int
	InputOperations    int // GET operations
	NonInputOperations int
	SuccessResponses   int
	Parameters         int
	Headers            int
	Schemas            int
}

// Count derives the structural totals of a document. A nil document or an
// empty path map yields zero counts.
func Count(doc *Document) Counts {
	var c Counts
	if doc == nil {
		return c
	}

	c.Paths = len(doc.Paths)
	for _, item := range doc.Paths {
		for _, op := range item.Operations {
			c.Operations++
			if op.Method.IsRead() {
				c.InputOperations++
			} else {
				c.NonInputOperations++
			}

			c.Parameters += len(op.Parameters)
			c.Headers += len(op.Headers)
			c.Schemas += len(op.Schemas)

			for _, r := range op.Responses {
				c.PathResponses++
				if IsSuccessClass(r.Code) {
					c.SuccessResponses++
				}
			}
		}
	}
	return c
}

// IsSuccessClass reports whether a response key belongs to the 1xx, 2xx or
// 3xx classes, or to the 6xx class used to mark out-of-band outcomes.
// Wildcards such as "2XX" count; "default" does not.
func IsSuccessClass(code string) bool {
	if code == "" {
		return false
	}
	switch code[0] {
	case '1', '2', '3', '6':
		return true
	}
	return false
}
