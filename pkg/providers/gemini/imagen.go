package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/harunnryd/kirana/pkg/genai"
	"github.com/tidwall/gjson"
)

// GenerateImage renders one image via the Imagen predict endpoint.
// Single-shot: no transcript state is involved.
func (a *Adapter) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if a.ImageModel == "" {
		return nil, fmt.Errorf("gemini: no image model configured")
	}
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	payload := map[string]any{
		"instances": []map[string]any{
			{"prompt": prompt},
		},
		"parameters": map[string]any{
			"sampleCount": 1,
			"aspectRatio": aspectRatio,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:predict", a.BaseURL, a.ImageModel)
	resp, err := a.post(ctx, url, bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}

	encoded := gjson.GetBytes(resp, "predictions.0.bytesBase64Encoded")
	if !encoded.Exists() || encoded.String() == "" {
		return nil, genai.ErrNoImageData
	}
	data, err := base64.StdEncoding.DecodeString(encoded.String())
	if err != nil {
		return nil, fmt.Errorf("gemini: decode image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, genai.ErrNoImageData
	}
	return data, nil
}
