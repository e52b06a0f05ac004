// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/objcodec/pkg/log"
)

// Code 返回给定错误对应的错误码。
// nil 返回 0；无法识别的错误统一映射为 errUnexpected 的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case codecError:
		return specificErr.code()

	default:
		return errUnexpected.code()
	}
}

func IsRetryableErr(err error) bool {
	if err, ok := err.(codecError); ok {
		return err.retriable
	}

	return false
}

func WrapErrAsInputError(err error) error {
	if merr, ok := err.(codecError); ok {
		WithErrorType(InputError)(&merr)
		return merr
	}
	return err
}

func WrapErrAsInputErrorWhen(err error, targets ...codecError) error {
	if merr, ok := err.(codecError); ok {
		for _, target := range targets {
			if target.errCode == merr.errCode {
				log.Info("mark error as input error", zap.Error(err))
				WithErrorType(InputError)(&merr)
				return merr
			}
		}
	}
	return err
}

func GetErrorType(err error) ErrorType {
	if merr, ok := err.(codecError); ok {
		return merr.errType
	}

	return SystemError
}

// IO 相关错误封装。
func WrapErrIoFailed(key string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrIoFailed, err.Error(), value("key", key))
}

// WrapErrIoRead 将底层读取错误转换为 codec 错误。
//
// io.EOF / io.ErrUnexpectedEOF 说明字节流在一个值的中途结束，按结构错误处理；
// 其余错误视为数据源本身的 IO 故障。
func WrapErrIoRead(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return wrapFieldsWithDesc(ErrStructuralViolation, "stream ended unexpectedly", value("reading", what))
	}
	return wrapFieldsWithDesc(ErrIoFailed, err.Error(), value("reading", what))
}

// Parameter 相关错误封装。
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidMsg(fmt string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmt, args...)
}

func WrapErrParameterTooLarge(name string, msg ...string) error {
	err := wrapFields(ErrParameterTooLarge, value("message", name))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Codec 相关错误封装。
func WrapErrUnsupportedPrimitive(typeName string, msg ...string) error {
	err := wrapFields(ErrUnsupportedPrimitive, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrTypeResolution(typeID string, msg ...string) error {
	err := wrapFields(ErrTypeResolution, value("typeID", typeID))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrStructuralViolation(desc string, fields ...errorField) error {
	return wrapFieldsWithDesc(ErrStructuralViolation, desc, fields...)
}

// WrapErrSequenceLength 表示读取到的元素个数为负数或超过上限。
func WrapErrSequenceLength(count int64, upper int) error {
	return wrapFieldsWithDesc(ErrStructuralViolation, "invalid sequence length", bound("count", count, 0, upper))
}

// WrapErrTextLength 表示读取到的文本长度超过上限。
func WrapErrTextLength(length uint64, upper int) error {
	return wrapFieldsWithDesc(ErrStructuralViolation, "invalid text length", bound("length", length, 0, upper))
}

func WrapErrPresenceFlag(flag byte, typeName string) error {
	return wrapFieldsWithDesc(ErrStructuralViolation, "invalid presence flag",
		value("flag", fmt.Sprintf("0x%02x", flag)),
		value("type", typeName),
	)
}

func WrapErrTrailingBytes(remaining int) error {
	return wrapFieldsWithDesc(ErrStructuralViolation, "trailing bytes after root value", value("remaining", remaining))
}

func WrapErrUnsupportedType(typeName string, msg ...string) error {
	err := wrapFields(ErrUnsupportedType, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrDepthExceeded(depth, limit int, typeName string) error {
	return wrapFields(ErrDepthExceeded,
		value("type", typeName),
		bound("depth", depth, 0, limit),
	)
}

func WrapErrOperationNotSupported(msg ...string) error {
	err := error(ErrOperationNotSupported)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err codecError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

func wrapFieldsWithDesc(err codecError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

// Value 构造一个 key=value 形式的错误字段，供其它包附加到 WrapErrStructuralViolation 上。
func Value(name string, v any) errorField {
	return value(name, v)
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

type boundField struct {
	name  string
	value any
	lower any
	upper any
}

func bound(name string, value, lower, upper any) boundField {
	return boundField{
		name,
		value,
		lower,
		upper,
	}
}

func (f boundField) String() string {
	return fmt.Sprintf("%v out of range %v <= %s <= %v", f.value, f.lower, f.name, f.upper)
}
