package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-spapi/schema"
)

const maxTokenResponseBodyBytes = 1 << 20 // 1 MiB

// requestToken posts one grant to the token endpoint and classifies the
// outcome: 401 is an AuthenticationError, any other non-2xx an HTTPError and
// transport failures are wrapped and returned.
func (m *TokenManager) requestToken(ctx context.Context, grant string, form url.Values) (tokenEndpointBody, error) {
	if m.httpClient == nil {
		return tokenEndpointBody{}, fmt.Errorf("core: token endpoint http client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tokenURL := strings.TrimSpace(m.config.TokenURL)
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	values := url.Values{}
	for key, items := range form {
		if strings.TrimSpace(key) == "" {
			continue
		}
		values[key] = append([]string(nil), items...)
	}
	values.Set("client_id", m.keys.LWAClientID)
	values.Set("client_secret", m.keys.LWAClientSecret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return tokenEndpointBody{}, newTransportError(grant, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	httpReq.Header.Set("Accept", "application/json")
	if userAgent := strings.TrimSpace(m.config.UserAgent); userAgent != "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return tokenEndpointBody{}, newTransportError(grant, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxTokenResponseBodyBytes+1))
	if err != nil {
		return tokenEndpointBody{}, newTransportError(grant, fmt.Errorf("read token response: %w", err))
	}
	if int64(len(raw)) > maxTokenResponseBodyBytes {
		return tokenEndpointBody{}, newTransportError(grant, fmt.Errorf("token response exceeds %d bytes", maxTokenResponseBodyBytes))
	}

	response := &TokenResponse{
		Grant:      grant,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       raw,
	}
	if m.config.inspects(grant) {
		m.observer.OnResponseReceived(ctx, response)
	}

	if !response.Successful() {
		if response.StatusCode == http.StatusUnauthorized {
			m.observer.OnAuthenticationFailure(ctx, response)
			return tokenEndpointBody{}, newAuthenticationError(response)
		}
		description := "unknown error"
		if body, parseErr := parseTokenBody(raw, httpResp.Header.Get("Content-Type")); parseErr == nil {
			description = body.describeError()
		}
		return tokenEndpointBody{}, newHTTPError(response, description)
	}

	body, err := parseTokenBody(raw, httpResp.Header.Get("Content-Type"))
	if err != nil {
		return tokenEndpointBody{}, err
	}
	if err := schema.ValidateRequiredFields(body, "access_token"); err != nil {
		return tokenEndpointBody{}, err
	}
	return body, nil
}

// parseTokenBody decodes a token endpoint body through the schema layer.
// Form-encoded bodies are accepted for endpoints that do not answer JSON.
func parseTokenBody(raw []byte, contentType string) (tokenEndpointBody, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if strings.Contains(contentType, "x-www-form-urlencoded") || strings.Contains(contentType, "text/plain") {
		return parseTokenBodyForm(raw)
	}
	return schema.Decode[tokenEndpointBody](raw)
}

func parseTokenBodyForm(raw []byte) (tokenEndpointBody, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(raw)))
	if err != nil {
		return tokenEndpointBody{}, fmt.Errorf("core: decode token response: %w", err)
	}
	wire := map[string]any{}
	for key := range values {
		wire[key] = strings.TrimSpace(values.Get(key))
	}
	if expiresIn, ok := wire["expires_in"].(string); ok {
		parsed, err := strconv.ParseInt(expiresIn, 10, 64)
		if err != nil {
			delete(wire, "expires_in")
		} else {
			wire["expires_in"] = parsed
		}
	}
	return tokenEndpointBodyShape.Parse(wire)
}
