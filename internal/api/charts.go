package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/spektr-org/spektrchart/engine"
	"github.com/spektr-org/spektrchart/schema"
)

const mimeMsgpack = "application/msgpack"

// ConfigureRequest is the body of POST /api/v1/charts/configure, sent as
// JSON or MessagePack. ChartConfig is decoded like a chart config file, so
// unknown keys are rejected.
type ConfigureRequest struct {
	ChartType   engine.ChartType    `json:"chartType,omitempty"`
	Rows        []engine.Row        `json:"rows"`
	Columns     []engine.ColumnMeta `json:"columns"`
	ChartConfig map[string]any      `json:"chartConfig,omitempty"`
}

// configureHandler builds the backend configuration for one chart. Bad
// chart configurations answer 422 with the offending field; a failure while
// writing the result answers with the fallback notice instead of an error.
func (s *Server) configureHandler(c *fiber.Ctx) error {
	req, err := s.decode(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	chartCfg, err := schema.DecodeChartConfig(req.ChartConfig)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	out, err := s.pipeline.Configure(req.ChartType, req.Rows, req.Columns, chartCfg)
	if err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": cfgErr.Error(),
				"field": cfgErr.Field,
			})
		}
		return err
	}

	asMsgpack := c.Accepts(fiber.MIMEApplicationJSON, mimeMsgpack) == mimeMsgpack
	renderer := engine.RenderFunc(func(cfg *engine.BackendConfig) error {
		return s.write(c, cfg, asMsgpack)
	})
	fallback := func(notice string, _ error) {
		_ = c.Status(fiber.StatusOK).JSON(fiber.Map{
			"fallback":  notice,
			"requestId": requestIDOf(c),
		})
	}

	logger := s.logger.With().Str("request_id", requestIDOf(c)).Logger()
	engine.NewGuard(renderer, fallback, logger).Render(out)
	return nil
}

// decode returns the request for the body, reusing the previous decode of a
// byte-identical body so its rows keep the same identity.
func (s *Server) decode(c *fiber.Ctx) (ConfigureRequest, error) {
	d := xxhash.New()
	_, _ = d.WriteString(c.Get(fiber.HeaderContentType))
	_, _ = d.Write(c.Body())
	sum := d.Sum64()

	if v, ok := s.requests.Get(sum); ok {
		return v.(ConfigureRequest), nil
	}
	req, err := decodeConfigureRequest(c)
	if err != nil {
		return req, err
	}
	s.requests.Add(sum, req)
	return req, nil
}

func decodeConfigureRequest(c *fiber.Ctx) (ConfigureRequest, error) {
	var req ConfigureRequest
	body := c.Body()
	if len(body) == 0 {
		return req, fmt.Errorf("empty request body")
	}

	if isMsgpack(c.Get(fiber.HeaderContentType)) {
		dec := msgpack.NewDecoder(bytes.NewReader(body))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("invalid msgpack body: %w", err)
		}
		return req, nil
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req, nil
}

func isMsgpack(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, mimeMsgpack) || strings.HasPrefix(ct, "application/x-msgpack")
}

// writeConfig sends cfg as JSON, or as MessagePack when the client asked
// for it.
func writeConfig(c *fiber.Ctx, cfg *engine.BackendConfig, asMsgpack bool) error {
	if !asMsgpack {
		return c.JSON(cfg)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	c.Set(fiber.HeaderContentType, mimeMsgpack)
	return c.Send(buf.Bytes())
}
