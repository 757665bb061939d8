package resources

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-spapi/core"
)

const (
	sigV4Algorithm = "AWS4-HMAC-SHA256"
	sigV4Service   = "execute-api"
	amzDateFormat  = "20060102T150405Z"
)

// RequestSigner signs an outgoing request after every other header is set.
type RequestSigner interface {
	Sign(req *http.Request) error
}

// SigV4Signer signs requests with AWS Signature Version 4 in the
// Authorization header.
type SigV4Signer struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Service         string
	Now             func() time.Time
}

// NewSigV4Signer builds an execute-api signer from the AWS keys of an
// application. Both keys are required.
func NewSigV4Signer(keys core.ApplicationKeys, region string) (*SigV4Signer, error) {
	if strings.TrimSpace(keys.AWSAccessKey) == "" || strings.TrimSpace(keys.AWSSecretKey) == "" {
		return nil, fmt.Errorf("resources: sigv4 requires aws_access_key and aws_secret_key")
	}
	if strings.TrimSpace(region) == "" {
		return nil, fmt.Errorf("resources: sigv4 requires an aws region")
	}
	return &SigV4Signer{
		AccessKeyID:     strings.TrimSpace(keys.AWSAccessKey),
		SecretAccessKey: strings.TrimSpace(keys.AWSSecretKey),
		Region:          strings.TrimSpace(region),
		Service:         sigV4Service,
	}, nil
}

func (s SigV4Signer) Sign(req *http.Request) error {
	if req == nil || req.URL == nil {
		return fmt.Errorf("resources: http request is required")
	}
	service := s.Service
	if strings.TrimSpace(service) == "" {
		service = sigV4Service
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	signedAt := now().UTC()
	amzDate := signedAt.Format(amzDateFormat)
	dateStamp := signedAt.Format("20060102")

	req.Header.Del("Authorization")
	req.Header.Set("X-Amz-Date", amzDate)
	if s.SessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", s.SessionToken)
	}

	payloadHash, err := requestBodyHash(req)
	if err != nil {
		return err
	}
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	canonicalHeaders, signedHeaders := canonicalHeaderBlock(req.Header, host)
	canonicalRequest := strings.Join([]string{
		strings.ToUpper(req.Method),
		canonicalURI(req.URL),
		canonicalQueryString(req.URL.Query()),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := strings.Join([]string{dateStamp, s.Region, service, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		sigV4Algorithm,
		amzDate,
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := hmacSHA256([]byte("AWS4"+s.SecretAccessKey), dateStamp)
	for _, part := range []string{s.Region, service, "aws4_request"} {
		signingKey = hmacSHA256(signingKey, part)
	}
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		sigV4Algorithm,
		s.AccessKeyID,
		credentialScope,
		signedHeaders,
		signature,
	))
	return nil
}

// requestBodyHash hashes the body and restores it so the transport can still
// send it.
func requestBodyHash(req *http.Request) (string, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return sha256Hex(nil), nil
	}
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return "", fmt.Errorf("resources: read request body: %w", err)
		}
		defer body.Close()
		payload, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("resources: read request body: %w", err)
		}
		return sha256Hex(payload), nil
	}
	payload, err := io.ReadAll(req.Body)
	if err != nil {
		return "", fmt.Errorf("resources: read request body: %w", err)
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(payload))
	return sha256Hex(payload), nil
}

func canonicalURI(requestURL *url.URL) string {
	path := requestURL.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

func canonicalHeaderBlock(headers http.Header, host string) (string, string) {
	normalized := map[string]string{
		"host": strings.ToLower(strings.TrimSpace(host)),
	}
	for key, values := range headers {
		lower := strings.ToLower(strings.TrimSpace(key))
		if lower == "" || lower == "authorization" || lower == "user-agent" {
			continue
		}
		cleaned := make([]string, 0, len(values))
		for _, value := range values {
			if fields := strings.Fields(value); len(fields) > 0 {
				cleaned = append(cleaned, strings.Join(fields, " "))
			}
		}
		if len(cleaned) > 0 {
			normalized[lower] = strings.Join(cleaned, ",")
		}
	}

	keys := make([]string, 0, len(normalized))
	for key := range normalized {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte(':')
		b.WriteString(normalized[key])
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(keys, ";")
}

func canonicalQueryString(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	type pair struct {
		key   string
		value string
	}
	pairs := make([]pair, 0, len(query))
	for key, values := range query {
		encodedKey := awsQueryEscape(key)
		if len(values) == 0 {
			pairs = append(pairs, pair{key: encodedKey})
			continue
		}
		for _, value := range values {
			pairs = append(pairs, pair{key: encodedKey, value: awsQueryEscape(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key == pairs[j].key {
			return pairs[i].value < pairs[j].value
		}
		return pairs[i].key < pairs[j].key
	})
	encoded := make([]string, 0, len(pairs))
	for _, p := range pairs {
		encoded = append(encoded, p.key+"="+p.value)
	}
	return strings.Join(encoded, "&")
}

func awsQueryEscape(value string) string {
	escaped := url.QueryEscape(value)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "*", "%2A")
	return strings.ReplaceAll(escaped, "%7E", "~")
}

func hmacSHA256(key []byte, value string) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(value))
	return mac.Sum(nil)
}

func sha256Hex(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
