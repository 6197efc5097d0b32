package util

import (
	"io"
	"net/http"

	"github.com/disintegration/imaging"
)

// GetSafeContentType 基于文件头嗅探真实的 MIME 类型，不信任客户端申报值
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := reader.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}

// GetImageDimensions 解码图片获取宽高，读取后重置游标
func GetImageDimensions(reader io.ReadSeeker) (int, int, error) {
	img, err := imaging.Decode(reader)
	if err != nil {
		return 0, 0, err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}
