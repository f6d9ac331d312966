package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

func init() {
	register("zip", writeZip)
	register("tar.gz", func(dest string, files []string) error {
		return writeCompressedTar(dest, files, func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		})
	})
	register("tar.xz", func(dest string, files []string) error {
		return writeCompressedTar(dest, files, func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		})
	})
	register("tar.br", func(dest string, files []string) error {
		return writeCompressedTar(dest, files, func(w io.Writer) (io.WriteCloser, error) {
			return brotli.NewWriter(w), nil
		})
	})
}

func writeZip(dest string, files []string) error {
	handle, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}
	defer handle.Close()

	archive := zip.NewWriter(handle)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return eris.Wrapf(err, "Could not stat %s", file)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return eris.Wrapf(err, "Failed to build header for %s", file)
		}
		header.Name = filepath.Base(file)
		header.Method = zip.Deflate

		entry, err := archive.CreateHeader(header)
		if err != nil {
			return eris.Wrapf(err, "Failed to add %s to %s", file, dest)
		}

		err = copyIntoArchive(entry, file)
		if err != nil {
			return err
		}
	}

	err = archive.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to finalize %s", dest)
	}
	return handle.Close()
}

func writeCompressedTar(dest string, files []string, compress func(io.Writer) (io.WriteCloser, error)) error {
	handle, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}
	defer handle.Close()

	compressor, err := compress(handle)
	if err != nil {
		return eris.Wrapf(err, "Failed to initialize compressor for %s", dest)
	}

	archive := tar.NewWriter(compressor)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return eris.Wrapf(err, "Could not stat %s", file)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return eris.Wrapf(err, "Failed to build header for %s", file)
		}
		header.Name = filepath.Base(file)

		err = archive.WriteHeader(header)
		if err != nil {
			return eris.Wrapf(err, "Failed to add %s to %s", file, dest)
		}

		err = copyIntoArchive(archive, file)
		if err != nil {
			return err
		}
	}

	err = archive.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to finalize %s", dest)
	}
	err = compressor.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to flush compressor for %s", dest)
	}
	return handle.Close()
}

func copyIntoArchive(w io.Writer, file string) error {
	in, err := os.Open(file)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", file)
	}
	defer in.Close()

	_, err = io.Copy(w, in)
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", file)
	}
	return nil
}
