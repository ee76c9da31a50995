package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/internal/api"
	ws "github.com/Naimurthedang/bondly-main/internal/websocket"
)

const captureChunkBytes = 3200

var (
	captureServer string
	captureView   string
	captureRate   int
	captureFriend string
)

var captureCmd = &cobra.Command{
	Use:   "capture <input>",
	Short: "Stream a raw L16 recording to a running server",
	Long: `Stream a raw mono L16 recording to a running Bondly server as if it came
from the browser microphone, then print the reply.

A new session is created and navigated to the view first.

Examples:
  bondly capture --view guide question.pcm
  bondly capture --view friends --friend pip --rate 48000 hello.pcm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pcm, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		base, err := url.Parse(captureServer)
		if err != nil {
			return err
		}
		route := captureView
		if route == "camera" {
			route = "baby_cam"
		}

		token, err := openSession(base, route)
		if err != nil {
			return err
		}

		u := *base
		u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
		u.Path = "/ws/capture"
		q := url.Values{"token": {token}, "view": {captureView}}
		if captureFriend != "" {
			q.Set("friend", captureFriend)
		}
		u.RawQuery = q.Encode()

		logger.Info("Connecting", zap.String("url", u.Redacted()))
		c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}
		defer c.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)

		done := make(chan error, 1)
		go func() { done <- readReplies(cmd.OutOrStdout(), c) }()

		if err := streamRecording(c, pcm); err != nil {
			return err
		}

		select {
		case err := <-done:
			return err
		case <-interrupt:
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				return err
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return nil
		}
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureServer, "server", "http://localhost:8080", "server base URL")
	captureCmd.Flags().StringVar(&captureView, "view", "guide", "capture view (friends, guide, camera)")
	captureCmd.Flags().IntVar(&captureRate, "rate", 16000, "sample rate of the recording")
	captureCmd.Flags().StringVar(&captureFriend, "friend", "", "friend to talk to on the friends view")
}

// openSession creates a session and navigates it to route.
func openSession(base *url.URL, route string) (string, error) {
	var created api.SessionResponse
	if err := postJSON(base.JoinPath("/api/v1/sessions"), "", nil, http.StatusCreated, &created); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	logger.Info("Session created", zap.String("sessionID", created.Session.ID))

	nav := api.NavigateRequest{Route: route}
	if err := postJSON(base.JoinPath("/api/v1/session/navigate"), created.Token, nav, http.StatusOK, nil); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	return created.Token, nil
}

func postJSON(u *url.URL, token string, body any, want int, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func streamRecording(c *websocket.Conn, pcm []byte) error {
	ready := ws.DeviceReadyMessage{MIMEType: "audio/pcm", SampleRate: captureRate}
	ready.Type = ws.MessageTypeDeviceReady
	if err := c.WriteJSON(ready); err != nil {
		return err
	}
	if err := c.WriteJSON(ws.BaseMessage{Type: ws.MessageTypeRecordingStart}); err != nil {
		return err
	}

	for start := 0; start < len(pcm); start += captureChunkBytes {
		end := min(start+captureChunkBytes, len(pcm))
		if err := c.WriteMessage(websocket.BinaryMessage, pcm[start:end]); err != nil {
			return err
		}
	}
	logger.Info("Recording sent", zap.Int("bytes", len(pcm)))

	return c.WriteJSON(ws.BaseMessage{Type: ws.MessageTypeRecordingStop})
}

// readReplies prints server messages until the reply to the recording
// arrives or the server closes the socket.
func readReplies(w io.Writer, c *websocket.Conn) error {
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		var base ws.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			return err
		}
		switch base.Type {
		case ws.MessageTypeAIResponse:
			var msg ws.AIResponseMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				return err
			}
			fmt.Fprintln(w, msg.Text)
			if msg.AudioURL != "" {
				fmt.Fprintln(w, msg.AudioURL)
			}
			return nil
		case ws.MessageTypeError:
			var msg ws.ErrorMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				return err
			}
			return fmt.Errorf("%s: %s", msg.Code, msg.Message)
		default:
			logger.Debug("Server message", zap.String("type", string(base.Type)), zap.ByteString("data", data))
		}
	}
}
