package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDownloadImage(t *testing.T) {
	payload := []byte("fake-png-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	data, contentType, err := DownloadImage(srv.URL)
	if err != nil {
		t.Fatalf("下载失败: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("内容不一致")
	}
	if contentType != "image/png" {
		t.Errorf("content-type=%q", contentType)
	}
}

func TestDownloadImageBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, _, err := DownloadImage(srv.URL); err == nil {
		t.Error("非 200 状态应报错")
	}
}

func TestDownloadImageDetectsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 不带 Content-Type 头，靠内容嗅探
		w.Header()["Content-Type"] = nil
		w.Write([]byte("\x89PNG\r\n\x1a\n00000000"))
	}))
	defer srv.Close()

	_, contentType, err := DownloadImage(srv.URL)
	if err != nil {
		t.Fatalf("下载失败: %v", err)
	}
	if contentType != "image/png" {
		t.Errorf("嗅探 content-type=%q，期望 image/png", contentType)
	}
}
