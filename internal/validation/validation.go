// Package validation は gin のバインディング（go-playground/validator）で検出した入力エラーを
// クライアント向けの短いメッセージへ変換します。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// Setup はフィールド名として JSON タグ名を使うようにバリデーターを設定します。
// 何度呼んでも一度だけ適用されます。
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// Describe は最初の違反内容を説明するメッセージを返します。
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "リクエストボディを JSON で送ってください"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s は必須です", field)
	case "email":
		return fmt.Sprintf("%s はメールアドレスの形式で指定してください", field)
	case "min":
		return fmt.Sprintf("%s は %s 文字以上で指定してください", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s は %s 文字以下で指定してください", field, fe.Param())
	case "excludes":
		return fmt.Sprintf("%s に %q は使えません", field, fe.Param())
	default:
		return fmt.Sprintf("%s の値が不正です", field)
	}
}
