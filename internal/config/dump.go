package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Dump renders the Ctx as YAML with secrets masked.
func (c *Ctx) Dump() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal ctx: %w", err)
	}
	return out, nil
}

// Print writes Dump to w. Tools call it when GHA2DB_CTXOUT is set.
func (c *Ctx) Print(w io.Writer) error {
	out, err := c.Dump()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
