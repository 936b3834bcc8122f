package entity

import (
	"fmt"

	"InspectAPI/internal/model"
	"InspectAPI/internal/storage"
)

// signer выдаёт временные ссылки на объекты хранилища; nil допустим —
// тогда соответствующие callback-поля деградируют в nil.
var signer storage.URLSigner

func SetSigner(s storage.URLSigner) {
	signer = s
}

// Register объявляет все модели предметной области в реестре слоя данных.
// Вызывается один раз на старте; порядок важен только для читаемости —
// ссылки между дескрипторами расставлены статически.
func Register() error {
	for _, d := range []*model.FieldDescriptor{
		Buildings,
		Inspectors,
		Inspections,
		Findings,
		Photos,
	} {
		if err := model.Register(d); err != nil {
			return fmt.Errorf("register entities: %w", err)
		}
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}
