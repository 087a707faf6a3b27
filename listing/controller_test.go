package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"productcatalog/domain"
	"productcatalog/navigation"
)

// MockProductAPI is a mock implementation of domain.ProductAPI
type MockProductAPI struct {
	mock.Mock
}

func (m *MockProductAPI) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductAPI) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductAPI) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductAPI) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductAPI) VerifyID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type alertRecorder struct {
	messages []string
}

func (a *alertRecorder) Alert(message string) {
	a.messages = append(a.messages, message)
}

func newController(api *MockProductAPI) (*Controller, *navigation.History, *alertRecorder) {
	nav := navigation.NewHistory(zerolog.Nop())
	alerts := &alertRecorder{}
	return NewController(api, NewEngine(), nav, alerts, zerolog.Nop()), nav, alerts
}

func TestLoad(t *testing.T) {
	api := new(MockProductAPI)
	api.On("List", mock.Anything).Return(numbered(7), nil).Once()
	c, _, _ := newController(api)

	var loadingSeen bool
	c.Subscribe(func(s State) {
		if s.Loading {
			loadingSeen = true
		}
	})

	require.NoError(t, c.Load(context.Background()))

	state := c.State()
	assert.True(t, loadingSeen)
	assert.False(t, state.Loading)
	assert.Equal(t, 7, state.Total)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, ids(state.Visible))
	api.AssertExpectations(t)
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	api := new(MockProductAPI)
	api.On("List", mock.Anything).Return(numbered(2), nil).Once()
	api.On("List", mock.Anything).Return(nil, &domain.NetworkError{Method: "GET", Path: "/products", StatusCode: 500}).Once()
	c, _, alerts := newController(api)

	require.NoError(t, c.Load(context.Background()))
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsNetworkError(err))

	state := c.State()
	assert.False(t, state.Loading)
	assert.Equal(t, []string{"p1", "p2"}, ids(state.Visible))
	assert.Empty(t, alerts.messages)
}

func TestSearchAndLimitDoNotRefetch(t *testing.T) {
	api := new(MockProductAPI)
	api.On("List", mock.Anything).Return([]domain.Product{named("Visa", "Credit card"), named("Mastercard", "Credit card")}, nil).Once()
	c, _, _ := newController(api)
	require.NoError(t, c.Load(context.Background()))

	c.Search("visa")
	assert.Equal(t, []string{"Visa"}, ids(c.State().Visible))

	c.Search("")
	c.SetLimit(1)
	assert.Equal(t, []string{"Visa"}, ids(c.State().Visible))

	api.AssertNumberOfCalls(t, "List", 1)
}

func TestToggleMenu(t *testing.T) {
	c, _, _ := newController(new(MockProductAPI))

	c.ToggleMenu("a")
	assert.Equal(t, "a", c.ActiveMenu())

	c.ToggleMenu("b")
	assert.Equal(t, "b", c.ActiveMenu())

	c.ToggleMenu("b")
	assert.Equal(t, "", c.ActiveMenu())

	c.ToggleMenu("a")
	c.CloseMenu()
	assert.Equal(t, "", c.ActiveMenu())
}

func TestEditNavigates(t *testing.T) {
	c, nav, _ := newController(new(MockProductAPI))
	c.ToggleMenu("p7")

	c.Edit(domain.Product{ID: "p7"})

	assert.Equal(t, navigation.Edit("p7"), nav.Current())
	assert.Equal(t, "", c.ActiveMenu())
}

func TestConfirmDeleteReloadsOnce(t *testing.T) {
	api := new(MockProductAPI)
	products := numbered(3)
	api.On("List", mock.Anything).Return(products, nil).Once()
	api.On("Delete", mock.Anything, "p2").Return(nil).Once()
	api.On("List", mock.Anything).Return([]domain.Product{products[0], products[2]}, nil).Once()
	c, _, alerts := newController(api)
	require.NoError(t, c.Load(context.Background()))

	c.ToggleMenu("p2")
	c.RequestDelete(products[1])

	state := c.State()
	assert.True(t, state.ConfirmOpen)
	require.NotNil(t, state.PendingDelete)
	assert.Equal(t, "p2", state.PendingDelete.ID)
	assert.Equal(t, "", state.ActiveMenuID)

	require.NoError(t, c.ConfirmDelete(context.Background()))

	api.AssertNumberOfCalls(t, "Delete", 1)
	api.AssertNumberOfCalls(t, "List", 2)
	state = c.State()
	assert.False(t, state.ConfirmOpen)
	assert.Nil(t, state.PendingDelete)
	assert.Equal(t, []string{"p1", "p3"}, ids(state.Visible))
	assert.Empty(t, alerts.messages)
}

func TestConfirmDeleteFailureAlertsAndKeepsStage(t *testing.T) {
	api := new(MockProductAPI)
	api.On("Delete", mock.Anything, "p1").Return(errors.New("boom")).Once()
	c, _, alerts := newController(api)

	c.RequestDelete(domain.Product{ID: "p1"})
	err := c.ConfirmDelete(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{DeleteFailedMessage}, alerts.messages)
	state := c.State()
	assert.True(t, state.ConfirmOpen)
	require.NotNil(t, state.PendingDelete)
	assert.Equal(t, "p1", state.PendingDelete.ID)
	api.AssertNotCalled(t, "List", mock.Anything)
}

func TestDismissAndNothingStaged(t *testing.T) {
	api := new(MockProductAPI)
	c, _, _ := newController(api)

	assert.ErrorIs(t, c.ConfirmDelete(context.Background()), ErrNothingStaged)

	c.RequestDelete(domain.Product{ID: "p1"})
	c.DismissDelete()
	assert.ErrorIs(t, c.ConfirmDelete(context.Background()), ErrNothingStaged)

	state := c.State()
	assert.False(t, state.ConfirmOpen)
	assert.Nil(t, state.PendingDelete)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
