package model

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	collMu   sync.Mutex
	collator = collate.New(language.Und)
)

// SetLocale настраивает локаль строкового сравнения для досортировки в
// памяти. Непарсящийся тег оставляет нейтральную локаль.
func SetLocale(tag string) {
	t, err := language.Parse(tag)
	if err != nil {
		return
	}
	collMu.Lock()
	collator = collate.New(t)
	collMu.Unlock()
}

// collator не потокобезопасен — сравнение под мьютексом.
func compareStrings(a, b string) int {
	collMu.Lock()
	defer collMu.Unlock()
	return collator.CompareString(a, b)
}

// applyResidualSorts — стабильная многоключевая досортировка страницы по
// callback-полям, не попавшим в ORDER BY. SQL-ключи в компаратор не
// возвращаются (повторное сравнение перетасовало бы равные строки
// недетерминированно): они лишь размечают группы одинаковых значений, и
// residual-ключи, в своём исходном приоритете, сортируют строки внутри
// этих групп. Без SQL-ключей досортировывается вся страница. nil идёт
// раньше любых значений при ASC и позже при DESC.
func applyResidualSorts(items []Record, sqlApplied, residual []Sort) {
	if len(items) < 2 || len(residual) == 0 {
		return
	}
	if len(sqlApplied) == 0 {
		sortRun(items, residual)
		return
	}
	start := 0
	for i := 1; i <= len(items); i++ {
		if i < len(items) && equalOnKeys(items[i], items[start], sqlApplied) {
			continue
		}
		sortRun(items[start:i], residual)
		start = i
	}
}

func sortRun(items []Record, sorts []Sort) {
	if len(items) < 2 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return compareRecords(items[i], items[j], sorts) < 0
	})
}

// equalOnKeys сравнивает строки только на равенство по SQL-ключам — без
// упорядочивания, его уже сделала база.
func equalOnKeys(a, b Record, sorts []Sort) bool {
	for _, s := range sorts {
		va, oka := a[s.Field]
		vb, okb := b[s.Field]
		na := !oka || va == nil
		nb := !okb || vb == nil
		if na != nb {
			return false
		}
		if na {
			continue
		}
		if compareValues(va, vb) != 0 {
			return false
		}
	}
	return true
}

func compareRecords(a, b Record, sorts []Sort) int {
	for _, s := range sorts {
		va, oka := a[s.Field]
		vb, okb := b[s.Field]
		na := !oka || va == nil
		nb := !okb || vb == nil

		if na && nb {
			continue
		}
		if na != nb {
			// nil раньше значений при ASC, позже при DESC
			before := -1
			if !s.Ascending {
				before = 1
			}
			if na {
				return before
			}
			return -before
		}

		c := compareValues(va, vb)
		if !s.Ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// compareValues: числа — численно, строки — по локали, остальное — через
// строковое представление.
func compareValues(a, b any) int {
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, aIsStr := a.(string)
	sb, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return compareStrings(sa, sb)
	}
	return compareStrings(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
