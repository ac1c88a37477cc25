// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pppw/internal/api"
	"github.com/jeranaias/pppw/internal/api/apitest"
)

func TestAsk_Success(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.AskFunc = func(q string) apitest.Reply {
		return apitest.Reply{Body: map[string]string{"answer": "A string bet is..."}}
	}

	c := api.NewClient(srv.URL + "/")
	resp, err := c.Ask(context.Background(), "What is a string bet?")
	require.NoError(t, err)
	require.Equal(t, "A string bet is...", resp.Answer)
	require.Equal(t, []string{"What is a string bet?"}, srv.Questions())
}

func TestAsk_ErrorBodyOnNon2xx(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.AskFunc = func(string) apitest.Reply {
		return apitest.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"error": "db down"}}
	}

	_, err := api.NewClient(srv.URL).Ask(context.Background(), "q")
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 500, apiErr.Status)
	require.Equal(t, "db down", apiErr.Error())
}

func TestAsk_StatusTextWithoutErrorBody(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"no body", nil},
		{"html", "<html>bad gateway</html>"},
		{"empty error", map[string]string{"error": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New()
			defer srv.Close()
			srv.AskFunc = func(string) apitest.Reply {
				return apitest.Reply{Status: http.StatusBadGateway, Body: tt.body}
			}

			_, err := api.NewClient(srv.URL).Ask(context.Background(), "q")
			require.EqualError(t, err, "HTTP 502")
		})
	}
}

func TestAsk_ErrorFieldOn200IsReturned(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.AskFunc = func(string) apitest.Reply {
		return apitest.Reply{Body: map[string]string{"error": "no rulebook loaded"}}
	}

	resp, err := api.NewClient(srv.URL).Ask(context.Background(), "q")
	require.NoError(t, err)
	require.Empty(t, resp.Answer)
	require.Equal(t, "no rulebook loaded", resp.Error)
}

func TestAsk_InvalidJSON(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.AskFunc = func(string) apitest.Reply { return apitest.Reply{Body: "not json"} }

	_, err := api.NewClient(srv.URL).Ask(context.Background(), "q")
	require.ErrorIs(t, err, api.ErrInvalidResponse)
}

func TestAsk_NetworkFailure(t *testing.T) {
	srv := apitest.New()
	url := srv.URL
	srv.Close()

	_, err := api.NewClient(url).Ask(context.Background(), "q")
	require.ErrorIs(t, err, api.ErrNetwork)
}

func TestAsk_NotConfigured(t *testing.T) {
	_, err := api.NewClient("  ").Ask(context.Background(), "q")
	require.ErrorIs(t, err, api.ErrNotConfigured)
}

func TestTranscribe_UploadShape(t *testing.T) {
	tests := []struct {
		mime     string
		wantName string
		wantType string
	}{
		{"audio/webm;codecs=opus", "recording.webm", "audio/webm;codecs=opus"},
		{"audio/ogg", "recording.ogg", "audio/ogg"},
		{"audio/wav", "recording.wav", "audio/wav"},
		{"video/webm", "recording.webm", "audio/webm"},
		{"", "recording.webm", "audio/webm"},
		{"audio/mp4", "recording.bin", "audio/mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			srv := apitest.New()
			defer srv.Close()
			srv.TranscribeFunc = func(u apitest.Upload) apitest.Reply {
				return apitest.Reply{Body: map[string]string{"transcript": "raise to 300"}}
			}

			resp, err := api.NewClient(srv.URL).Transcribe(context.Background(), []byte("OggS-bytes"), tt.mime)
			require.NoError(t, err)
			require.Equal(t, "raise to 300", resp.Transcript)

			up := srv.Uploads()
			require.Len(t, up, 1)
			require.Equal(t, "audio", up[0].Field)
			require.Equal(t, tt.wantName, up[0].FileName)
			require.Equal(t, tt.wantType, up[0].ContentType)
			require.Equal(t, "OggS-bytes", string(up[0].Data))
		})
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.TranscribeFunc = func(apitest.Upload) apitest.Reply {
		return apitest.Reply{Status: http.StatusServiceUnavailable, Body: map[string]string{"error": "whisper offline"}}
	}

	_, err := api.NewClient(srv.URL).Transcribe(context.Background(), []byte("x"), "audio/webm")
	require.EqualError(t, err, "whisper offline")
}
