package validator

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// 預編譯正則表達式，避免在熱路徑中重複編譯
var (
	// id：字母、數字、點、冒號、橫線、下劃線
	reID = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)
	// 歸檔標籤：字母、數字、橫線
	reTag = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	// 文件名驗證：允許字母、數字、點、橫線、下劃線
	reFilename = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// MaxIDLength 用戶與消息 id 的最大長度
const MaxIDLength = 64

// ValidateID 驗證用戶或消息 id
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id 不能為空")
	}
	if len(id) > MaxIDLength {
		return errors.New("id 過長（最多 64 字符）")
	}
	if !reID.MatchString(id) {
		return errors.New("id 只能包含字母、數字、點、冒號、橫線、下劃線")
	}
	return nil
}

// ValidateTag 驗證歸檔標籤，空標籤合法
func ValidateTag(tag string) error {
	if tag == "" {
		return nil
	}
	if len(tag) > 32 || !reTag.MatchString(tag) {
		return errors.New("標籤只能包含字母、數字、橫線（最多 32 字符）")
	}
	return nil
}

// ValidateFilename 驗證文件名安全性（防止路徑遍歷）
func ValidateFilename(filename string) error {
	filename = strings.TrimSpace(filename)

	if filename == "" {
		return errors.New("文件名不能為空")
	}

	// 1. 檢查路徑遍歷攻擊
	if strings.Contains(filename, "..") {
		return errors.New("文件名不能包含 '..' (路徑遍歷攻擊)")
	}

	// 2. 禁止路徑分隔符 (考慮操作系統兼容性)
	if strings.ContainsAny(filename, `/\`) {
		return errors.New("文件名不能包含路徑分隔符")
	}

	// 3. 禁止空字節注入
	if strings.Contains(filename, "\x00") {
		return errors.New("文件名不能包含空字節")
	}

	// 4. 檢查文件名長度（Linux/Unix: 255 字節上限）
	if len(filename) > 255 {
		return errors.New("文件名過長（最多 255 字符）")
	}

	// 5. 驗證字符合法性
	if !reFilename.MatchString(filename) {
		return errors.New("文件名只能包含字母、數字、點、橫線、下劃線")
	}

	return nil
}

// ValidateSafePath 驗證完整路徑安全性
// 確保目標路徑在指定的基礎目錄內。
func ValidateSafePath(baseDir, filename string) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return errors.New("無法解析基礎目錄: " + err.Error())
	}

	absPath, err := filepath.Abs(filepath.Join(absBase, filename))
	if err != nil {
		return errors.New("無法解析路徑: " + err.Error())
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return errors.New("路徑不在允許的基礎目錄內")
	}

	return nil
}
