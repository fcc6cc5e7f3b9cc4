package tools

import "github.com/mitchellh/mapstructure"

// decodeArgs maps a backend-supplied argument payload onto a tool's
// typed argument struct. Weak typing tolerates backends that send
// numbers or bools where the schema says string.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
