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
	"io"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrTypeResolution("example.Point")
	err = errors.Wrap(err, "failed to deserialize")
	s.ErrorIs(err, ErrTypeResolution)
	s.Equal(Code(ErrTypeResolution), Code(err))
	s.Equal(int32(0), Code(nil))
	s.Equal(errUnexpected.errCode, Code(errors.New("plain")))

	sameCodeErr := newCodecError("new error", ErrTypeResolution.errCode, false)
	s.True(sameCodeErr.Is(ErrTypeResolution))
	s.False(ErrStructuralViolation.Is(ErrTypeResolution))
}

func (s *ErrSuite) TestWrap() {
	// IO 相关错误。
	s.ErrorIs(WrapErrIoFailed("sink", os.ErrClosed), ErrIoFailed)
	s.Nil(WrapErrIoFailed("sink", nil))
	s.ErrorIs(WrapErrIoRead("int32", io.EOF), ErrStructuralViolation)
	s.ErrorIs(WrapErrIoRead("int32", io.ErrUnexpectedEOF), ErrStructuralViolation)
	s.ErrorIs(WrapErrIoRead("int32", os.ErrClosed), ErrIoFailed)

	// 参数相关错误。
	s.ErrorIs(WrapErrParameterInvalid("pointer", "struct", "bad target"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("nil writer"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterTooLarge("max-depth"), ErrParameterTooLarge)

	// Codec 相关错误。
	s.ErrorIs(WrapErrUnsupportedPrimitive("unsafe.Pointer"), ErrUnsupportedPrimitive)
	s.ErrorIs(WrapErrTypeResolution("missing.Type", "not registered"), ErrTypeResolution)
	s.ErrorIs(WrapErrStructuralViolation("mismatch", Value("field", "X")), ErrStructuralViolation)
	s.ErrorIs(WrapErrSequenceLength(-1, 16), ErrStructuralViolation)
	s.ErrorIs(WrapErrTextLength(1<<40, 16), ErrStructuralViolation)
	s.ErrorIs(WrapErrPresenceFlag(0x05, "string"), ErrStructuralViolation)
	s.ErrorIs(WrapErrTrailingBytes(3), ErrStructuralViolation)
	s.ErrorIs(WrapErrUnsupportedType("map[string]int"), ErrUnsupportedType)
	s.ErrorIs(WrapErrDepthExceeded(513, 512, "main.Node"), ErrDepthExceeded)
	s.ErrorIs(WrapErrOperationNotSupported("graphs"), ErrOperationNotSupported)
}

func (s *ErrSuite) TestMessage() {
	err := WrapErrPresenceFlag(0x05, "string")
	s.Equal("structural violation[flag=0x05][type=string]: invalid presence flag", err.Error())

	err = WrapErrDepthExceeded(3, 2, "main.Node")
	s.Equal("nesting depth exceeded[type=main.Node][3 out of range 0 <= depth <= 2]", err.Error())
}

func (s *ErrSuite) TestErrorType() {
	err := WrapErrAsInputError(ErrParameterInvalid)
	s.Equal(InputError, GetErrorType(err))
	s.Equal(SystemError, GetErrorType(errors.New("plain")))

	err = WrapErrAsInputErrorWhen(ErrTypeResolution, ErrStructuralViolation)
	s.Equal(SystemError, GetErrorType(err))
	err = WrapErrAsInputErrorWhen(ErrTypeResolution, ErrTypeResolution)
	s.Equal(InputError, GetErrorType(err))
	s.Equal("input_error", GetErrorType(err).String())

	s.False(IsRetryableErr(ErrStructuralViolation))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrIoFailed("sink", os.ErrClosed), WrapErrTypeResolution("x"))
	s.Equal(Code(ErrTypeResolution), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
