package openrank

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ConfigTestSuite))

type ConfigTestSuite struct {
}

func (s *ConfigTestSuite) TestDefaults(c *gc.C) {
	cfg := Default()
	c.Assert(cfg.validate(), gc.IsNil)
	c.Assert(cfg.Variant, gc.Equals, VariantRecompute)
	c.Assert(cfg.DefaultRetentionFactor, gc.Equals, 0.85)
	c.Assert(cfg.DefaultInitValue, gc.Equals, 1.0)
}

func (s *ConfigTestSuite) TestZeroValuesAreKept(c *gc.C) {
	cfg := Config{DefaultInitValue: 2}
	c.Assert(cfg.validate(), gc.IsNil)
	c.Assert(cfg.DefaultRetentionFactor, gc.Equals, 0.0)

	cfg = Config{DefaultRetentionFactor: 0.5}
	c.Assert(cfg.validate(), gc.IsNil)
	c.Assert(cfg.DefaultInitValue, gc.Equals, 0.0)
}

func (s *ConfigTestSuite) TestPresets(c *gc.C) {
	lr := LowRetention()
	c.Assert(lr.validate(), gc.IsNil)
	c.Assert(lr.Variant, gc.Equals, VariantFreezeOnHalt)
	c.Assert(lr.DefaultRetentionFactor, gc.Equals, 0.15)
}

func (s *ConfigTestSuite) TestInvalidConfig(c *gc.C) {
	cfg := Config{
		Variant:                Variant(42),
		DefaultRetentionFactor: 1.5,
	}
	err := cfg.validate()
	c.Assert(err, gc.ErrorMatches, `(?s)2 errors occurred.*unsupported variant 42.*DefaultRetentionFactor must be in the range \[0, 1\].*`)

	_, err = New(cfg)
	c.Assert(err, gc.ErrorMatches, "(?s)OpenRank config validation failed: .*")
}

func (s *ConfigTestSuite) TestParseVariant(c *gc.C) {
	specs := []struct {
		in     string
		exp    Variant
		expErr string
	}{
		{in: "recompute", exp: VariantRecompute},
		{in: "Freeze", exp: VariantFreezeOnHalt},
		{in: "freeze-on-halt", exp: VariantFreezeOnHalt},
		{in: "bogus", expErr: `unknown OpenRank variant "bogus"`},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %q", specIndex, spec.in)
		got, err := ParseVariant(spec.in)
		if spec.expErr != "" {
			c.Assert(err, gc.ErrorMatches, spec.expErr)
			continue
		}
		c.Assert(err, gc.IsNil)
		c.Assert(got, gc.Equals, spec.exp)
		c.Assert(got.String(), gc.Not(gc.Equals), "unknown")
	}
}
