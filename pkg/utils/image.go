package utils

import (
	"fmt"
	"io"
	"net/http"
)

// 远程图片导入上限，防止恶意 URL 拖垮内存
const maxImageDownloadBytes = 20 << 20 // 20MB

// DownloadImage 下载网络图片，返回字节切片与 Content-Type
func DownloadImage(url string) ([]byte, string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("http get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body failed: %v", err)
	}
	if len(data) > maxImageDownloadBytes {
		return nil, "", fmt.Errorf("image too large")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}
