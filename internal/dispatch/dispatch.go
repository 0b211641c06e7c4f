// Package dispatch implements the action catalogue: a pure function
// mapping an action name and its JSON arguments to a JSON-serializable
// result, adapting base64/GCM-semantic wire values to the internal
// field/polynomial representations and back. It holds no state and
// performs no I/O, so it is trivially safe to call concurrently from
// every worker in internal/batch.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/kauma-lab/kauma/internal/bitcodec"
	"github.com/kauma-lab/kauma/internal/blockcipher"
	"github.com/kauma-lab/kauma/internal/forge"
	"github.com/kauma-lab/kauma/internal/gf128"
	"github.com/kauma-lab/kauma/internal/gfpoly"
	"github.com/kauma-lab/kauma/internal/gfpoly/factor"
	"github.com/kauma-lab/kauma/internal/ghash"
	"github.com/kauma-lab/kauma/internal/xex"
)

// ErrBadArgument covers unknown actions, unknown semantics/algorithms,
// and malformed argument shapes.
var ErrBadArgument = errors.New("dispatch: bad argument")

// Handle runs action against its JSON-encoded arguments and returns a
// JSON-serializable result, or an error describing what went wrong.
// Callers (internal/batch) are expected to record a returned error as
// {"error": err.Error()} rather than treat it as fatal.
func Handle(action string, args json.RawMessage) (interface{}, error) {
	fn, ok := actions[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadArgument, action)
	}
	return fn(args)
}

type actionFunc func(json.RawMessage) (interface{}, error)

var actions = map[string]actionFunc{
	"poly2block":        poly2block,
	"block2poly":        block2poly,
	"gfmul":             gfmul,
	"gfdiv":             gfdiv,
	"sea128":            sea128,
	"xex":               xexAction,
	"gcm_encrypt":       gcmEncrypt,
	"gcm_decrypt":       gcmDecrypt,
	"gfpoly_add":        gfpolyAdd,
	"gfpoly_mul":        gfpolyMul,
	"gfpoly_pow":        gfpolyPow,
	"gfpoly_divmod":     gfpolyDivmod,
	"gfpoly_powmod":     gfpolyPowmod,
	"gfpoly_sort":       gfpolySort,
	"gfpoly_make_monic": gfpolyMakeMonic,
	"gfpoly_sqrt":       gfpolySqrt,
	"gfpoly_diff":       gfpolyDiff,
	"gfpoly_gcd":        gfpolyGCD,
	"gfpoly_factor_sff": gfpolyFactorSFF,
	"gfpoly_factor_ddf": gfpolyFactorDDF,
	"gfpoly_factor_edf": gfpolyFactorEDF,
	"gcm_recover_key":   gcmRecoverKey,
}

func unmarshalArgs(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return nil
}

func semanticOf(s string) (bitcodec.Semantic, error) {
	switch bitcodec.Semantic(s) {
	case bitcodec.XEX, bitcodec.GCM:
		return bitcodec.Semantic(s), nil
	default:
		return "", fmt.Errorf("%w: unknown semantic %q", ErrBadArgument, s)
	}
}

func blockToElement(b [16]byte, sem bitcodec.Semantic) gf128.Element {
	if sem == bitcodec.GCM {
		return gf128.FromXEXBytes(bitcodec.FromGCMSem(b))
	}
	return gf128.FromXEXBytes(b)
}

func elementToBlock(e gf128.Element, sem bitcodec.Semantic) [16]byte {
	b := e.Bytes()
	if sem == bitcodec.GCM {
		return bitcodec.ToGCMSem(b)
	}
	return b
}

// polyFromB64 decodes a list of base64 GCM-semantic blocks (the wire
// format used for every polynomial-valued argument) into a Poly,
// ascending by index.
func polyFromB64(blocks []string) (gfpoly.Poly, error) {
	c := make([]gf128.Element, len(blocks))
	for i, s := range blocks {
		b, err := bitcodec.B64ToBlock(s)
		if err != nil {
			return gfpoly.Poly{}, err
		}
		c[i] = blockToElement(b, bitcodec.GCM)
	}
	return gfpoly.New(c...), nil
}

func polyToB64(p gfpoly.Poly) []string {
	out := make([]string, len(p.C))
	for i, c := range p.C {
		out[i] = bitcodec.BlockToB64(elementToBlock(c, bitcodec.GCM))
	}
	return out
}

// --- 4.A codec ---

func poly2block(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Semantic     string `json:"semantic"`
		Coefficients []int  `json:"coefficients"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	sem, err := semanticOf(args.Semantic)
	if err != nil {
		return nil, err
	}
	var block [16]byte
	if sem == bitcodec.GCM {
		block, err = bitcodec.Poly2BlockGCM(args.Coefficients)
	} else {
		block, err = bitcodec.Poly2BlockXEX(args.Coefficients)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"block": bitcodec.BlockToB64(block)}, nil
}

func block2poly(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Semantic string `json:"semantic"`
		Block    string `json:"block"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	sem, err := semanticOf(args.Semantic)
	if err != nil {
		return nil, err
	}
	block, err := bitcodec.B64ToBlock(args.Block)
	if err != nil {
		return nil, err
	}
	var coeffs []int
	if sem == bitcodec.GCM {
		coeffs = bitcodec.Block2PolyGCM(block)
	} else {
		coeffs = bitcodec.Block2PolyXEX(block)
	}
	return map[string]interface{}{"coefficients": coeffs}, nil
}

// --- 4.B field element ---

func gfmul(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Semantic string `json:"semantic"`
		A        string `json:"a"`
		B        string `json:"b"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	sem, err := semanticOf(args.Semantic)
	if err != nil {
		return nil, err
	}
	ab, err := bitcodec.B64ToBlock(args.A)
	if err != nil {
		return nil, err
	}
	bb, err := bitcodec.B64ToBlock(args.B)
	if err != nil {
		return nil, err
	}
	product := gf128.Mul(blockToElement(ab, sem), blockToElement(bb, sem))
	return map[string]interface{}{"product": bitcodec.BlockToB64(elementToBlock(product, sem))}, nil
}

func gfdiv(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A string `json:"a"`
		B string `json:"b"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	ab, err := bitcodec.B64ToBlock(args.A)
	if err != nil {
		return nil, err
	}
	bb, err := bitcodec.B64ToBlock(args.B)
	if err != nil {
		return nil, err
	}
	q, err := gf128.Div(blockToElement(ab, bitcodec.GCM), blockToElement(bb, bitcodec.GCM))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"q": bitcodec.BlockToB64(elementToBlock(q, bitcodec.GCM))}, nil
}

// --- block ciphers / modes ---

func sea128(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Mode  string `json:"mode"`
		Key   string `json:"key"`
		Input string `json:"input"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	key, err := bitcodec.B64ToBlock(args.Key)
	if err != nil {
		return nil, err
	}
	input, err := bitcodec.B64ToBlock(args.Input)
	if err != nil {
		return nil, err
	}
	var out [16]byte
	switch args.Mode {
	case "encrypt":
		out, err = blockcipher.SEA128{}.Encrypt(key, input)
	case "decrypt":
		out, err = blockcipher.SEA128{}.Decrypt(key, input)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrBadArgument, args.Mode)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"output": bitcodec.BlockToB64(out)}, nil
}

func xexAction(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Mode  string `json:"mode"`
		Key   string `json:"key"`
		Tweak string `json:"tweak"`
		Input string `json:"input"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	keyRaw, err := bitcodec.B64ToBytes(args.Key)
	if err != nil {
		return nil, err
	}
	if len(keyRaw) != 32 {
		return nil, fmt.Errorf("%w: xex key must be 32 bytes, got %d", ErrBadArgument, len(keyRaw))
	}
	var key [32]byte
	copy(key[:], keyRaw)
	tweak, err := bitcodec.B64ToBlock(args.Tweak)
	if err != nil {
		return nil, err
	}
	input, err := bitcodec.B64ToBytes(args.Input)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch args.Mode {
	case "encrypt":
		out, err = xex.Encrypt(blockcipher.SEA128{}, key, tweak, input)
	case "decrypt":
		out, err = xex.Decrypt(blockcipher.SEA128{}, key, tweak, input)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrBadArgument, args.Mode)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"output": bitcodec.BytesToB64(out)}, nil
}

// --- 4.E GHASH / GCM ---

func gcmEncrypt(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Algorithm string `json:"algorithm"`
		Nonce     string `json:"nonce"`
		Key       string `json:"key"`
		Plaintext string `json:"plaintext"`
		AD        string `json:"ad"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	cipher, err := blockcipher.ByName(args.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	nonceRaw, err := bitcodec.B64ToBytes(args.Nonce)
	if err != nil {
		return nil, err
	}
	if len(nonceRaw) != 12 {
		return nil, fmt.Errorf("%w: nonce must be 12 bytes, got %d", ErrBadArgument, len(nonceRaw))
	}
	var nonce [12]byte
	copy(nonce[:], nonceRaw)
	key, err := bitcodec.B64ToBlock(args.Key)
	if err != nil {
		return nil, err
	}
	pt, err := bitcodec.B64ToBytes(args.Plaintext)
	if err != nil {
		return nil, err
	}
	ad, err := bitcodec.B64ToBytes(args.AD)
	if err != nil {
		return nil, err
	}

	res, err := ghash.Encrypt(cipher, key, nonce, pt, ad)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"ciphertext": bitcodec.BytesToB64(res.Ciphertext),
		"tag":        bitcodec.BlockToB64(res.Tag),
		"L":          bitcodec.BlockToB64(res.L),
		"H":          bitcodec.BlockToB64(res.H),
	}, nil
}

func gcmDecrypt(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Algorithm  string `json:"algorithm"`
		Nonce      string `json:"nonce"`
		Key        string `json:"key"`
		Ciphertext string `json:"ciphertext"`
		AD         string `json:"ad"`
		Tag        string `json:"tag"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	cipher, err := blockcipher.ByName(args.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	nonceRaw, err := bitcodec.B64ToBytes(args.Nonce)
	if err != nil {
		return nil, err
	}
	if len(nonceRaw) != 12 {
		return nil, fmt.Errorf("%w: nonce must be 12 bytes, got %d", ErrBadArgument, len(nonceRaw))
	}
	var nonce [12]byte
	copy(nonce[:], nonceRaw)
	key, err := bitcodec.B64ToBlock(args.Key)
	if err != nil {
		return nil, err
	}
	ct, err := bitcodec.B64ToBytes(args.Ciphertext)
	if err != nil {
		return nil, err
	}
	ad, err := bitcodec.B64ToBytes(args.AD)
	if err != nil {
		return nil, err
	}
	tag, err := bitcodec.B64ToBlock(args.Tag)
	if err != nil {
		return nil, err
	}

	res, err := ghash.Decrypt(cipher, key, nonce, ct, ad, tag)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"authentic": res.Authentic,
		"plaintext": bitcodec.BytesToB64(res.Plaintext),
	}, nil
}

// --- 4.C polynomial ring ---

func gfpolyAdd(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		B []string `json:"B"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	b, err := polyFromB64(args.B)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"S": polyToB64(gfpoly.Add(a, b))}, nil
}

func gfpolyMul(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		B []string `json:"B"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	b, err := polyFromB64(args.B)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"P": polyToB64(gfpoly.Mul(a, b))}, nil
}

func gfpolyPow(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		K int      `json:"k"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	z, err := gfpoly.Pow(a, args.K)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Z": polyToB64(z)}, nil
}

func gfpolyDivmod(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		B []string `json:"B"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	b, err := polyFromB64(args.B)
	if err != nil {
		return nil, err
	}
	q, r := gfpoly.DivMod(a, b)
	return map[string]interface{}{"Q": polyToB64(q), "R": polyToB64(r)}, nil
}

func gfpolyPowmod(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string   `json:"A"`
		M []string   `json:"M"`
		K json.Number `json:"k"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	m, err := polyFromB64(args.M)
	if err != nil {
		return nil, err
	}
	k, ok := new(big.Int).SetString(args.K.String(), 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad exponent %q", ErrBadArgument, args.K.String())
	}
	if k.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative exponent %s", ErrBadArgument, k.String())
	}
	return map[string]interface{}{"Z": polyToB64(gfpoly.PowMod(a, m, k))}, nil
}

func gfpolySort(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Polys [][]string `json:"polys"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	polys := make([]gfpoly.Poly, len(args.Polys))
	for i, blocks := range args.Polys {
		p, err := polyFromB64(blocks)
		if err != nil {
			return nil, err
		}
		polys[i] = p
	}
	gfpoly.Sort(polys)
	out := make([][]string, len(polys))
	for i, p := range polys {
		out[i] = polyToB64(p)
	}
	return map[string]interface{}{"sorted_polys": out}, nil
}

func gfpolyMakeMonic(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"A*": polyToB64(gfpoly.MakeMonic(a))}, nil
}

func gfpolySqrt(raw json.RawMessage) (interface{}, error) {
	var args struct {
		Q []string `json:"Q"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	q, err := polyFromB64(args.Q)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"S": polyToB64(gfpoly.Sqrt(q))}, nil
}

func gfpolyDiff(raw json.RawMessage) (interface{}, error) {
	var args struct {
		F []string `json:"F"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	f, err := polyFromB64(args.F)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"F'": polyToB64(gfpoly.Derivative(f))}, nil
}

func gfpolyGCD(raw json.RawMessage) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		B []string `json:"B"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := polyFromB64(args.A)
	if err != nil {
		return nil, err
	}
	b, err := polyFromB64(args.B)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"G": polyToB64(gfpoly.GCD(a, b))}, nil
}

// --- 4.D factoring ---

func gfpolyFactorSFF(raw json.RawMessage) (interface{}, error) {
	var args struct {
		F []string `json:"F"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	f, err := polyFromB64(args.F)
	if err != nil {
		return nil, err
	}
	sff := factor.SFF(f)
	out := make([]map[string]interface{}, len(sff))
	for i, s := range sff {
		out[i] = map[string]interface{}{"factor": polyToB64(s.Factor), "exponent": s.Exponent}
	}
	return map[string]interface{}{"factors": out}, nil
}

func gfpolyFactorDDF(raw json.RawMessage) (interface{}, error) {
	var args struct {
		F []string `json:"F"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	f, err := polyFromB64(args.F)
	if err != nil {
		return nil, err
	}
	ddf := factor.DDF(f)
	out := make([]map[string]interface{}, len(ddf))
	for i, d := range ddf {
		out[i] = map[string]interface{}{"factor": polyToB64(d.Factor), "degree": d.Degree}
	}
	return map[string]interface{}{"factors": out}, nil
}

func gfpolyFactorEDF(raw json.RawMessage) (interface{}, error) {
	var args struct {
		F []string `json:"F"`
		D int      `json:"d"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	f, err := polyFromB64(args.F)
	if err != nil {
		return nil, err
	}
	if args.D < 1 {
		return nil, fmt.Errorf("%w: degree d must be positive, got %d", ErrBadArgument, args.D)
	}
	edf := factor.EDF(f, args.D, factor.NewRandomRNG())
	out := make([][]string, len(edf))
	for i, p := range edf {
		out[i] = polyToB64(p)
	}
	return map[string]interface{}{"factors": out}, nil
}

// --- 4.F forgery ---

type forgeRecordArgs struct {
	Ciphertext string `json:"ciphertext"`
	AD         string `json:"ad"`
	Tag        string `json:"tag"`
}

func decodeForgeRecord(a forgeRecordArgs) (forge.Record, error) {
	ct, err := bitcodec.B64ToBytes(a.Ciphertext)
	if err != nil {
		return forge.Record{}, err
	}
	ad, err := bitcodec.B64ToBytes(a.AD)
	if err != nil {
		return forge.Record{}, err
	}
	tag, err := bitcodec.B64ToBlock(a.Tag)
	if err != nil {
		return forge.Record{}, err
	}
	return forge.Record{AD: ad, Ciphertext: ct, Tag: tag}, nil
}

func gcmRecoverKey(raw json.RawMessage) (interface{}, error) {
	var args struct {
		M1     forgeRecordArgs `json:"m1"`
		M2     forgeRecordArgs `json:"m2"`
		M3     forgeRecordArgs `json:"m3"`
		Target struct {
			Ciphertext string `json:"ciphertext"`
			AD         string `json:"ad"`
		} `json:"target"`
	}
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}

	m1, err := decodeForgeRecord(args.M1)
	if err != nil {
		return nil, err
	}
	m2, err := decodeForgeRecord(args.M2)
	if err != nil {
		return nil, err
	}
	m3, err := decodeForgeRecord(args.M3)
	if err != nil {
		return nil, err
	}
	targetCT, err := bitcodec.B64ToBytes(args.Target.Ciphertext)
	if err != nil {
		return nil, err
	}
	targetAD, err := bitcodec.B64ToBytes(args.Target.AD)
	if err != nil {
		return nil, err
	}

	res, err := forge.Recover(m1, m2, m3, targetAD, targetCT, factor.NewRandomRNG())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"tag":  bitcodec.BlockToB64(res.Tag),
		"H":    bitcodec.BlockToB64(res.H),
		"EKY0": bitcodec.BlockToB64(res.EKY0),
	}, nil
}
