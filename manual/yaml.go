package manual

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlManual struct {
	Registers []yamlRegister `yaml:"registers"`
}

type yamlFormula struct {
	Limit  uint32 `yaml:"limit"`
	Stride uint32 `yaml:"stride"`
}

type yamlMasks struct {
	Read          *uint32 `yaml:"read"`
	Write         *uint32 `yaml:"write"`
	Task          *uint32 `yaml:"task"`
	Unwriteable   *uint32 `yaml:"unwriteable"`
	Const         *uint32 `yaml:"const"`
	ClearOnWrite1 *uint32 `yaml:"clear_on_write_1"`
}

type yamlValue struct {
	Name   string `yaml:"name"`
	Value  uint32 `yaml:"value"`
	Access string `yaml:"access"`
}

type yamlField struct {
	Name   string      `yaml:"name"`
	Access string      `yaml:"access"`
	Bits   string      `yaml:"bits"`
	Count  uint        `yaml:"count"`
	Values []yamlValue `yaml:"values"`
}

type yamlRegister struct {
	Name    string        `yaml:"name"`
	Access  string        `yaml:"access"`
	Address uint32        `yaml:"address"`
	Arrays  []yamlFormula `yaml:"arrays"`
	Masks   yamlMasks     `yaml:"masks"`
	Fields  []yamlField   `yaml:"fields"`
}

// parseBits parses "hi:lo" or a single bit number.
func parseBits(bits string) (high uint, low uint, err error) {
	hi, lo, ok := splitBits(bits)
	if !ok {
		hi, lo = bits, bits
	}

	h, err := evalExpr(hi, nil)
	if err != nil {
		return
	}
	l, err := evalExpr(lo, nil)
	if err != nil {
		return
	}

	high, low = uint(h), uint(l)
	return
}

// LoadYAML parses a YAML register manual.
func LoadYAML(input io.Reader) (man *Manual, err error) {
	var file yamlManual

	err = yaml.NewDecoder(input).Decode(&file)
	if err != nil {
		if err == io.EOF {
			err = nil
			return Build(nil)
		}
		return
	}

	defs := make([]RegisterDef, 0, len(file.Registers))
	for _, yreg := range file.Registers {
		def := RegisterDef{
			Name:    yreg.Name,
			Access:  yreg.Access,
			Address: yreg.Address,
			Masks: MaskDef{
				Read:          yreg.Masks.Read,
				Write:         yreg.Masks.Write,
				Task:          yreg.Masks.Task,
				Unwriteable:   yreg.Masks.Unwriteable,
				Const:         yreg.Masks.Const,
				ClearOnWrite1: yreg.Masks.ClearOnWrite1,
			},
		}
		for _, dim := range yreg.Arrays {
			def.Arrays = append(def.Arrays, Formula{Limit: dim.Limit, Stride: dim.Stride})
		}
		for _, yfld := range yreg.Fields {
			fdef := FieldDef{
				Name:   yfld.Name,
				Access: yfld.Access,
				Count:  yfld.Count,
			}
			fdef.High, fdef.Low, err = parseBits(yfld.Bits)
			if err != nil {
				err = &ErrDefinition{Name: yfld.Name, Err: err}
				return
			}
			for _, yval := range yfld.Values {
				fdef.Values = append(fdef.Values, ValueDef{
					Name:   yval.Name,
					Value:  yval.Value,
					Access: yval.Access,
				})
			}
			def.Fields = append(def.Fields, fdef)
		}
		defs = append(defs, def)
	}

	return Build(defs)
}
