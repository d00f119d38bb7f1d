// Package filex reads local image files into the data URL form the chat
// wire format carries for attachments.
package filex

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/securechat/securechat-cli/internal/common"
)

// MaxImageBytes bounds attachment size so a single message stays well under
// the websocket frame limit after base64 expansion.
const MaxImageBytes = 2 << 20

// ImageDataURL reads the file at path and returns it encoded as a
// base64 data URL. The content must sniff as an image type.
func ImageDataURL(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("error reading image: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", common.ErrorInternal, MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading image: %w", err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s is not an image", common.ErrorInternal, mime)
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
