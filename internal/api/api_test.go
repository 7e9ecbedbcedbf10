package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"atendechat/internal/database"
	"atendechat/internal/evolution"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named in-memory database so every pooled connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// stubGateway answers every gateway call successfully; used by the instance
// handler tests.
type stubGateway struct{}

func (stubGateway) CreateInstance(req evolution.CreateInstanceRequest) (*evolution.CreateInstanceResponse, error) {
	resp := &evolution.CreateInstanceResponse{}
	resp.Instance.InstanceName = req.InstanceName
	resp.Hash.APIKey = "key-" + req.InstanceName
	if req.Qrcode {
		resp.Qrcode = &evolution.Qrcode{Base64: "data:image/png;base64,QR"}
	}
	return resp, nil
}

func (stubGateway) DeleteInstance(name, apiKey string) error  { return nil }
func (stubGateway) LogoutInstance(name, apiKey string) error  { return nil }
func (stubGateway) RestartInstance(name, apiKey string) error { return nil }

func (stubGateway) ConnectInstance(name, apiKey string) (*evolution.ConnectResponse, error) {
	return &evolution.ConnectResponse{Base64: "data:image/png;base64,QR"}, nil
}

func (stubGateway) GetConnectionState(name, apiKey string) (*evolution.ConnectionState, error) {
	return &evolution.ConnectionState{Instance: name, State: "close"}, nil
}

func (stubGateway) SendTextMessage(name, apiKey string, req evolution.SendTextRequest) (*evolution.SendMessageResponse, error) {
	return &evolution.SendMessageResponse{}, nil
}

func (stubGateway) SendMediaMessage(name, apiKey string, req evolution.SendMediaRequest) (*evolution.SendMessageResponse, error) {
	return &evolution.SendMessageResponse{}, nil
}

func (stubGateway) SetWebhook(name, apiKey, webhookURL string, events []string) error { return nil }

func (stubGateway) FindWebhook(name, apiKey string) (*evolution.WebhookSettings, error) {
	return &evolution.WebhookSettings{}, nil
}

func (stubGateway) FindContacts(name, apiKey string) ([]evolution.ContactRecord, error) {
	return nil, nil
}

func (stubGateway) FindChats(name, apiKey string) ([]evolution.ChatRecord, error) {
	return nil, nil
}

func (stubGateway) FindMessages(name, apiKey, remoteJid string, limit int) ([]evolution.MessageRecord, error) {
	return nil, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}
