package model

import (
	"context"
	"fmt"
	"regexp"
)

// Record держит одну строку результата: колонка (или имя extended-поля) -> значение.
type Record map[string]any

// Callback вычисляет значение extended-поля после выборки базовой строки.
// Получает строку, уже обогащённую всеми предыдущими полями из списка,
// поэтому поздние поля могут читать значения ранних.
type Callback func(ctx context.Context, row Record) (any, error)

// ExtendedField описывает поле результата, которого нет в базовой таблице.
// Ровно одна стратегия разрешения: Callback задан — поле не участвует в SQL
// вообще; Callback пуст — поле закрывается LEFT JOIN-ом по индексу дескриптора.
type ExtendedField struct {
	Name      string           // имя поля в результате, по соглашению с префиксом "x_"
	FromField string           // колонка базовой таблицы, ключ связи
	Ref       *FieldDescriptor // связанная модель
	RefField  string           // колонка связанной модели; по умолчанию её PrimaryDisplayField
	Callback  Callback
}

// JoinResolved сообщает, закрывается ли поле SQL-джойном.
func (f *ExtendedField) JoinResolved() bool {
	return f.Callback == nil
}

func (f *ExtendedField) refColumn() string {
	if f.RefField != "" {
		return f.RefField
	}
	if f.Ref != nil {
		return f.Ref.PrimaryDisplayField
	}
	return ""
}

// FieldDescriptor — статические метаданные одной модели: таблица, ключи и
// whitelist колонок, к которым вызывающий код может обращаться в
// поиске/сортировке. Объявляется один раз и после Register не меняется.
type FieldDescriptor struct {
	Name                string
	Table               string
	PrimaryKey          string
	PrimaryDisplayField string
	Fields              []string
	ExtendedFields      []*ExtendedField

	fieldSet map[string]struct{}
}

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Registry хранит все зарегистрированные модели по логическому имени.
var Registry = map[string]*FieldDescriptor{}

// Register валидирует дескриптор и добавляет его в Registry.
func Register(d *FieldDescriptor) error {
	if err := d.validate(); err != nil {
		return fmt.Errorf("model %q: %w", d.Name, err)
	}
	d.fieldSet = make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		d.fieldSet[f] = struct{}{}
	}
	Registry[d.Name] = d
	return nil
}

func (d *FieldDescriptor) validate() error {
	if d.Name == "" || d.Table == "" {
		return fmt.Errorf("name and table are required")
	}
	if !identRe.MatchString(d.Table) {
		return fmt.Errorf("invalid table identifier: %q", d.Table)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("empty field whitelist")
	}
	declared := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if !identRe.MatchString(f) {
			return fmt.Errorf("invalid field identifier: %q", f)
		}
		if _, dup := declared[f]; dup {
			return fmt.Errorf("duplicate field: %q", f)
		}
		declared[f] = struct{}{}
	}
	if _, ok := declared[d.PrimaryKey]; !ok {
		return fmt.Errorf("primary key %q not in field whitelist", d.PrimaryKey)
	}
	if _, ok := declared[d.PrimaryDisplayField]; !ok {
		return fmt.Errorf("primary display field %q not in field whitelist", d.PrimaryDisplayField)
	}
	for _, ef := range d.ExtendedFields {
		if ef.Name == "" || !identRe.MatchString(ef.Name) {
			return fmt.Errorf("invalid extended field name: %q", ef.Name)
		}
		if _, clash := declared[ef.Name]; clash {
			return fmt.Errorf("extended field %q shadows a base column", ef.Name)
		}
		if _, dup := declared[ef.Name]; dup {
			return fmt.Errorf("duplicate extended field: %q", ef.Name)
		}
		declared[ef.Name] = struct{}{}
		if ef.Callback != nil {
			continue
		}
		if ef.Ref == nil {
			return fmt.Errorf("extended field %q: join-resolved field needs a reference model", ef.Name)
		}
		if _, ok := d.fieldInList(ef.FromField); !ok {
			return fmt.Errorf("extended field %q: from_field %q not in field whitelist", ef.Name, ef.FromField)
		}
		if ef.refColumn() == "" {
			return fmt.Errorf("extended field %q: no reference column", ef.Name)
		}
	}
	return nil
}

func (d *FieldDescriptor) fieldInList(name string) (string, bool) {
	for _, f := range d.Fields {
		if f == name {
			return f, true
		}
	}
	return "", false
}

// HasField проверяет имя по whitelist базовых колонок. Им же пользуются
// обработчики, отсекая недоверенные имена колонок до сборки предикатов.
func (d *FieldDescriptor) HasField(name string) bool {
	return identRe.MatchString(name) && d.hasField(name)
}

func (d *FieldDescriptor) hasField(name string) bool {
	if d.fieldSet != nil {
		_, ok := d.fieldSet[name]
		return ok
	}
	_, ok := d.fieldInList(name)
	return ok
}

// extendedByName возвращает extended-поле и его позицию в списке.
func (d *FieldDescriptor) extendedByName(name string) (*ExtendedField, int) {
	for i, ef := range d.ExtendedFields {
		if ef.Name == name {
			return ef, i
		}
	}
	return nil, -1
}

// joinAlias — алиас JOIN-а для extended-поля по его позиции в списке.
func joinAlias(idx int) string {
	return fmt.Sprintf("ref%d", idx)
}
