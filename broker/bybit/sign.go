package bybit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

const recvWindow = "5000"

// authorize adds the Bybit v5 authentication headers. The signature is
// HMAC-SHA256 over timestamp + apiKey + recvWindow + payload, where
// payload is the query string for GETs and the JSON body for POSTs.
func (c *Client) authorize(req *http.Request, payload string) {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(timestamp + c.apiKey + recvWindow + payload))

	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("X-BAPI-SIGN", hex.EncodeToString(mac.Sum(nil)))
}
