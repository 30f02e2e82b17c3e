package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	registryDomain "github.com/keygrid/keygrid/internal/registry/domain"
	"github.com/keygrid/keygrid/internal/registry/http/dto"
	"github.com/keygrid/keygrid/internal/testutil"
)

// mockRegistryUseCase is a mock implementation of RegistryUseCase.
type mockRegistryUseCase struct {
	mock.Mock
}

func (m *mockRegistryUseCase) RegisterDevice(
	ctx context.Context,
	device *registryDomain.Device,
) (*registryDomain.DeviceRegistration, error) {
	args := m.Called(ctx, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.DeviceRegistration), args.Error(1)
}

func (m *mockRegistryUseCase) DeregisterDevice(ctx context.Context, deviceAddress string) (string, error) {
	args := m.Called(ctx, deviceAddress)
	return args.String(0), args.Error(1)
}

func (m *mockRegistryUseCase) GetDevice(ctx context.Context, deviceAddress string) (*registryDomain.Device, error) {
	args := m.Called(ctx, deviceAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Device), args.Error(1)
}

func (m *mockRegistryUseCase) ListDevices(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRegistryUseCase) WhitelistOrganisation(ctx context.Context, orgAddress string) (string, error) {
	args := m.Called(ctx, orgAddress)
	return args.String(0), args.Error(1)
}

func (m *mockRegistryUseCase) RemoveOrganisation(ctx context.Context, orgAddress string) (string, error) {
	args := m.Called(ctx, orgAddress)
	return args.String(0), args.Error(1)
}

func (m *mockRegistryUseCase) AddMember(ctx context.Context, orgAddress, memberAddress string) (string, error) {
	args := m.Called(ctx, orgAddress, memberAddress)
	return args.String(0), args.Error(1)
}

func (m *mockRegistryUseCase) RemoveMember(ctx context.Context, orgAddress, memberAddress string) (string, error) {
	args := m.Called(ctx, orgAddress, memberAddress)
	return args.String(0), args.Error(1)
}

func setupRouter(registry *mockRegistryUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRegistryHandler(registry, slog.New(slog.DiscardHandler))
	router := gin.New()
	router.POST("/v1/devices", handler.RegisterDeviceHandler)
	router.GET("/v1/devices", handler.ListDevicesHandler)
	router.GET("/v1/devices/:address", handler.GetDeviceHandler)
	router.DELETE("/v1/devices/:address", handler.DeregisterDeviceHandler)
	router.POST("/v1/organisations", handler.WhitelistOrganisationHandler)
	router.DELETE("/v1/organisations/:address", handler.RemoveOrganisationHandler)
	router.POST("/v1/organisations/:address/members", handler.AddMemberHandler)
	router.DELETE("/v1/organisations/:address/members/:member", handler.RemoveMemberHandler)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestRegistryHandler_Devices(t *testing.T) {
	t.Run("Success_RegisterDevice", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		device := testutil.Address(t, 2)
		owner := testutil.Address(t, 3)

		registry.On("RegisterDevice", mock.Anything, mock.MatchedBy(func(d *registryDomain.Device) bool {
			return d.Address == device && d.Owner == owner
		})).
			Return(&registryDomain.DeviceRegistration{WhitelistTxID: "tx-wl", BindingTxID: "tx-bind"}, nil).
			Once()

		w := postJSON(t, router, "/v1/devices", map[string]any{
			"address": device,
			"owner":   owner,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var registration registryDomain.DeviceRegistration
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registration))
		assert.Equal(t, "tx-wl", registration.WhitelistTxID)
		assert.Equal(t, "tx-bind", registration.BindingTxID)
	})

	t.Run("Error_InvalidAddress", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)

		w := postJSON(t, router, "/v1/devices", map[string]any{"address": "nope"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		registry.AssertNotCalled(t, "RegisterDevice", mock.Anything, mock.Anything)
	})

	t.Run("Success_GetDevice", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		device := testutil.Address(t, 2)

		registry.On("GetDevice", mock.Anything, device).
			Return(&registryDomain.Device{Address: device, Owner: testutil.Address(t, 3)}, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/devices/"+device, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_GetUnregisteredDeviceMapsTo404", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		device := testutil.Address(t, 2)

		registry.On("GetDevice", mock.Anything, device).
			Return(nil, registryDomain.ErrDeviceNotRegistered).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/devices/"+device, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success_ListDevices", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)

		registry.On("ListDevices", mock.Anything).
			Return([]string{"3NAlpha", "3NBravo"}, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/devices", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListDevicesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, []string{"3NAlpha", "3NBravo"}, response.Devices)
	})

	t.Run("Success_DeregisterDevice", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		device := testutil.Address(t, 2)

		registry.On("DeregisterDevice", mock.Anything, device).
			Return("tx-rm", nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/devices/"+device, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRegistryHandler_Organisations(t *testing.T) {
	t.Run("Success_WhitelistOrganisation", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		org := testutil.Address(t, 3)

		registry.On("WhitelistOrganisation", mock.Anything, org).
			Return("tx-org", nil).
			Once()

		w := postJSON(t, router, "/v1/organisations", map[string]any{"address": org})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Success_AddMember", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		org := testutil.Address(t, 3)
		member := testutil.Address(t, 4)

		registry.On("AddMember", mock.Anything, org, member).
			Return("tx-member", nil).
			Once()

		w := postJSON(t, router, "/v1/organisations/"+org+"/members", map[string]any{"address": member})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Success_RemoveMember", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		org := testutil.Address(t, 3)
		member := testutil.Address(t, 4)

		registry.On("RemoveMember", mock.Anything, org, member).
			Return("tx-member-rm", nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/organisations/"+org+"/members/"+member, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_RemoveOrganisationLedgerFailure", func(t *testing.T) {
		registry := &mockRegistryUseCase{}
		router := setupRouter(registry)
		org := testutil.Address(t, 3)

		registry.On("RemoveOrganisation", mock.Anything, org).
			Return("", registryDomain.ErrRegistryWrite).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/organisations/"+org, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
