package cocache

import "fmt"

// prepared is a record that passed validation, with its id and stored form.
type prepared struct {
	id     string
	stored any
}

// prepare validates one record and computes its stored form. index is the
// position in a batch, -1 for single inserts.
func (c *Cache[R]) prepare(record R, index int) (prepared, error) {
	for _, v := range c.validators {
		if err := v.Validate(record, c.name); err != nil {
			return prepared{}, c.reject(c.ids.RecordID(record), index, err)
		}
	}

	id := c.ids.RecordID(record)
	if id == "" {
		return prepared{}, c.reject("", index, ErrMissingID)
	}

	stored, err := c.freezer.Freeze(record)
	if err != nil {
		return prepared{}, c.reject(id, index, fmt.Errorf("freeze: %w", err))
	}
	return prepared{id: id, stored: stored}, nil
}

// prepareAll validates a whole batch before anything is written.
func (c *Cache[R]) prepareAll(records []R) ([]prepared, error) {
	out := make([]prepared, 0, len(records))
	for i, r := range records {
		p, err := c.prepare(r, i)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Cache[R]) reject(id string, index int, cause error) error {
	err := &ValidationError{Cache: c.name, ID: id, Index: index, Err: cause}
	c.log.Debug("record rejected", Fields{"cache": c.name, "id": id, "index": index, "err": cause})
	c.hooks.RecordRejected(c.name, id, err)
	return err
}

func idsOf(ps []prepared) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.id
	}
	return ids
}
