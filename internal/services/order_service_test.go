package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"github.com/aarondl/null/v8"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/eventbus"
)

func newTestOrderService(orderRepo *memoryOrderRepository, storage *memoryFileStorage) OrderServiceInterface {
	logger := zap.NewNop()
	return NewOrderService(orderRepo, storage, eventbus.New(logger), logger)
}

func TestVideoFileName(t *testing.T) {
	cases := []struct {
		name        string
		orderNumber string
		shopName    string
		want        string
	}{
		{"обычное имя", "SO-1001", "旗舰店", "SO-1001_旗舰店.mp4"},
		{"пустой магазин", "SO-1001", "", "SO-1001.mp4"},
		{"запрещённые символы вычищаются", "SO-1001", `Shop<>:"/\|?*Name`, "SO-1001_ShopName.mp4"},
		{"пробелы становятся подчёркиваниями", "SO-1001", "My  Little Shop", "SO-1001_My_Little_Shop.mp4"},
		{"магазин из одних запрещённых символов", "SO-1001", `<>/\`, "SO-1001.mp4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VideoFileName(tc.orderNumber, tc.shopName))
		})
	}
}

func TestVideoFileName_LongShopNameTruncated(t *testing.T) {
	shopName := strings.Repeat("магазин", 20)
	got := VideoFileName("SO-1001", shopName)

	clean := strings.TrimSuffix(strings.TrimPrefix(got, "SO-1001_"), ".mp4")
	assert.Len(t, []rune(clean), 50, "имя магазина режется до 50 символов")
}

func TestCreateOrder(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc := newTestOrderService(orderRepo, &memoryFileStorage{})

	created, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		OrderNumber: "SO-1201",
		ShopName:    "旗舰店",
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-1201", created.OrderNumber)
	assert.Equal(t, string(entities.StatusPending), created.Status)
	assert.Equal(t, string(entities.DamageIntact), created.DamageType)
}

func TestCreateOrder_Duplicate(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc := newTestOrderService(orderRepo, &memoryFileStorage{})

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{OrderNumber: "SO-1202"})
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), dto.CreateOrderDTO{OrderNumber: "SO-1202"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrDuplicateOrderNumber.Code))
}

func TestUpdateOrder_UpsertCreatesMissing(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc := newTestOrderService(orderRepo, &memoryFileStorage{})

	updated, created, err := svc.UpdateOrder(context.Background(), "SO-1301", dto.UpdateOrderDTO{
		ShopName: null.StringFrom("Новый магазин"),
	})
	require.NoError(t, err)
	assert.True(t, created, "обновление несуществующего заказа создаёт его")
	assert.Equal(t, "Новый магазин", updated.ShopName)
}

func TestUpdateOrder_PatchDoesNotTouchOtherFields(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc := newTestOrderService(orderRepo, &memoryFileStorage{})

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		OrderNumber: "SO-1302",
		ShopName:    "旗舰店",
		Notes:       "исходная заметка",
	})
	require.NoError(t, err)

	updated, created, err := svc.UpdateOrder(context.Background(), "SO-1302", dto.UpdateOrderDTO{
		Status: null.StringFrom("已处理"),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, string(entities.StatusProcessed), updated.Status)
	assert.Equal(t, "旗舰店", updated.ShopName, "не указанные в патче поля не меняются")
	assert.Equal(t, "исходная заметка", updated.Notes)
}

func TestDeleteOrder_RemovesVideoFile(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	storage := &memoryFileStorage{}
	svc := newTestOrderService(orderRepo, storage)

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{OrderNumber: "SO-1401"})
	require.NoError(t, err)
	_, err = svc.AttachVideo(context.Background(), "SO-1401", strings.NewReader("видеоданные"), 11, 3.5)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), "SO-1401"))

	require.Len(t, storage.deleted, 1, "вместе с заказом удаляется его видеофайл")
	assert.Equal(t, storage.saved[0], storage.deleted[0])

	_, err = svc.GetOrder(context.Background(), "SO-1401")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrOrderNotFound.Code))
}

func TestAttachVideo(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	storage := &memoryFileStorage{}
	svc := newTestOrderService(orderRepo, storage)

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		OrderNumber: "SO-1501",
		ShopName:    "旗舰店",
	})
	require.NoError(t, err)

	updated, err := svc.AttachVideo(context.Background(), "SO-1501", strings.NewReader("видеоданные"), 11, 42.5)
	require.NoError(t, err)

	assert.True(t, updated.HasVideo)
	assert.Equal(t, "videos/SO-1501_旗舰店.mp4", updated.VideoFile)
	assert.Equal(t, 42.5, updated.VideoDuration)
	assert.Equal(t, int64(11), updated.VideoSize)
	assert.NotNil(t, updated.ScanTime, "время записи видео заполняет пустой scanTime")
}

func TestAttachVideo_OrderMissing(t *testing.T) {
	svc := newTestOrderService(newMemoryOrderRepository(), &memoryFileStorage{})

	_, err := svc.AttachVideo(context.Background(), "SO-1601", strings.NewReader("видеоданные"), 11, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrOrderNotFound.Code))
}
