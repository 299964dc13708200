package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHexBytes(t *testing.T) {
	c := qt.New(t)

	c.Run("String", func(c *qt.C) {
		c.Assert(HexBytes(nil).String(), qt.Equals, "0x")
		c.Assert(HexBytes{0x00, 0xAB, 0xCD}.String(), qt.Equals, "0x00abcd")
	})

	c.Run("JSON", func(c *qt.C) {
		b, err := json.Marshal(HexBytes{0xDE, 0xAD, 0xBE, 0xEF})
		c.Assert(err, qt.IsNil)
		c.Assert(string(b), qt.Equals, `"0xdeadbeef"`)

		for _, in := range []string{`"0xdeadbeef"`, `"0Xdeadbeef"`, `"deadbeef"`} {
			var hb HexBytes
			c.Assert(json.Unmarshal([]byte(in), &hb), qt.IsNil)
			c.Assert(hb, qt.DeepEquals, HexBytes{0xDE, 0xAD, 0xBE, 0xEF})
		}

		var hb HexBytes
		c.Assert(json.Unmarshal([]byte(`123`), &hb), qt.ErrorMatches, `invalid JSON string: "123"`)
		c.Assert(json.Unmarshal([]byte(`"0x0"`), &hb), qt.ErrorMatches, `invalid hex string "0": .*`)
	})

	c.Run("HexStringToHexBytes", func(c *qt.C) {
		got, err := HexStringToHexBytes("  0xdeadbeef\n")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, HexBytes{0xDE, 0xAD, 0xBE, 0xEF})

		got, err = HexStringToHexBytes("")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.HasLen, 0)

		_, err = HexStringToHexBytes("0xzz")
		c.Assert(err, qt.ErrorMatches, `invalid hex string "zz": .*`)
	})
}
