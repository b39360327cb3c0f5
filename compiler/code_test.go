package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{65534}, []byte{byte(OpConstant), 255, 254}},
		{OpAdd, []int{}, []byte{byte(OpAdd)}},
		{OpGetLocal, []int{255}, []byte{byte(OpGetLocal), 255}},
		{OpClosure, []int{65534, 255}, []byte{byte(OpClosure), 255, 254, 255}},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)
		require.Equal(t, tt.expected, instruction)
	}
}

func TestInstructionsString(t *testing.T) {
	instructions := []Instructions{
		Make(OpAdd),
		Make(OpGetLocal, 1),
		Make(OpConstant, 2),
		Make(OpConstant, 65535),
		Make(OpClosure, 65535, 255),
	}

	expected := `0000 OpAdd
0001 OpGetLocal 1
0003 OpConstant 2
0006 OpConstant 65535
0009 OpClosure 65535 255
`

	concatted := Instructions{}
	for _, ins := range instructions {
		concatted = append(concatted, ins...)
	}

	require.Equal(t, expected, concatted.String())
}

func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OpConstant, []int{65535}, 2},
		{OpGetLocal, []int{255}, 1},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)
		def, err := Get(tt.op)
		require.NoError(t, err)

		operandsRead, n := ReadOperands(def, instruction[1:])
		require.Equal(t, tt.bytesRead, n)
		require.Equal(t, tt.operands, operandsRead)
	}
}

func TestUndefinedOpcodeErrors(t *testing.T) {
	_, err := Get(Opcode(255))
	require.Error(t, err)
}

// TestOperandWidthAgreement checks, for every opcode in the definition
// table, that Make encodes as many bytes as the definition's
// OperandWidths declare, and that ReadOperands decodes the exact operands
// given to Make back out of that many bytes — so the disassembler can
// never desync from the encoder for any opcode.
func TestOperandWidthAgreement(t *testing.T) {
	for op, def := range definitions {
		operands := make([]int, len(def.OperandWidths))
		for i, width := range def.OperandWidths {
			switch width {
			case 1:
				operands[i] = 200
			case 2:
				operands[i] = 60000
			default:
				t.Fatalf("unsupported operand width %d for opcode %s", width, def.Name)
			}
		}

		instruction := Make(op, operands...)

		wantLen := 1
		for _, width := range def.OperandWidths {
			wantLen += width
		}
		require.Len(t, instruction, wantLen, "opcode %s", def.Name)

		gotDef, err := Get(op)
		require.NoError(t, err)
		require.Same(t, def, gotDef)

		operandsRead, n := ReadOperands(gotDef, instruction[1:])
		require.Equal(t, wantLen-1, n, "opcode %s", def.Name)
		require.Equal(t, operands, operandsRead, "opcode %s", def.Name)
	}
}
