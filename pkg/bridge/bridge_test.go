package bridge_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fsbridge/pkg/bridge"
	"fsbridge/pkg/errors"
	"fsbridge/pkg/types"
)

var _ = Describe("Bridge", func() {
	var (
		root string
		rec  *recordLogger
		b    *bridge.Bridge
	)

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "fsbridge_test")
		Expect(err).ToNot(HaveOccurred())
		rec = &recordLogger{}
		b = bridge.New(bridge.WithLogger(rec))
	})

	AfterEach(func() {
		Expect(os.RemoveAll(root)).To(Succeed())
	})

	Describe("WriteString", func() {
		It("Should round trip content through ReadFromFile", func() {
			p := filepath.Join(root, "a.txt")
			Expect(b.WriteString(p, "hello")).To(BeTrue())
			Expect(b.ReadFromFile(p)).To(Equal("hello"))
			Expect(rec.infos).To(ContainElement("wrote file: " + p))
		})
		It("Should truncate longer existing content", func() {
			p := filepath.Join(root, "a.txt")
			Expect(b.WriteString(p, "a much longer first body")).To(BeTrue())
			Expect(b.WriteString(p, "short")).To(BeTrue())
			Expect(b.ReadFromFile(p)).To(Equal("short"))
		})
		It("Should preserve embedded NUL bytes", func() {
			p := filepath.Join(root, "nul.bin")
			Expect(b.Write(p, []byte("a\x00b\x00c"))).To(Succeed())
			data, err := b.ReadFile(p)
			Expect(err).ToNot(HaveOccurred())
			Expect(data).To(Equal([]byte("a\x00b\x00c")))
		})
		It("Should write an empty file", func() {
			p := filepath.Join(root, "empty.txt")
			Expect(b.WriteString(p, "")).To(BeTrue())
			Expect(b.FileExists(p)).To(BeTrue())
		})
		It("Should fail and log when the parent directory is missing", func() {
			p := filepath.Join(root, "missing", "a.txt")
			Expect(b.WriteString(p, "x")).To(BeFalse())
			Expect(rec.errors).To(HaveLen(1))
			Expect(rec.errors[0]).To(ContainSubstring(p))
			Expect(rec.errors[0]).To(ContainSubstring("no such file or directory"))
			Expect(errors.TypeOf(b.Write(p, []byte("x")))).To(Equal(errors.ErrorTypeNotFound))
		})
		It("Should apply the configured file mode", func() {
			b = bridge.New(bridge.WithFileMode(0600))
			p := filepath.Join(root, "private.txt")
			Expect(b.WriteString(p, "secret")).To(BeTrue())
			info, err := os.Stat(p)
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0600)))
		})
	})

	Describe("AppendToFile", func() {
		It("Should concatenate successive appends", func() {
			p := filepath.Join(root, "log.txt")
			Expect(b.AppendToFile(p, "A")).To(BeTrue())
			Expect(b.AppendToFile(p, "B")).To(BeTrue())
			Expect(b.ReadFromFile(p)).To(Equal("AB"))
			Expect(rec.infos).To(ContainElement("appended file: " + p))
		})
		It("Should never truncate existing content", func() {
			p := filepath.Join(root, "log.txt")
			Expect(b.WriteString(p, "hello")).To(BeTrue())
			Expect(b.AppendToFile(p, "")).To(BeTrue())
			Expect(b.ReadFromFile(p)).To(Equal("hello"))
		})
		It("Should fail when the parent directory is missing", func() {
			Expect(b.AppendToFile(filepath.Join(root, "nope", "log.txt"), "x")).To(BeFalse())
			Expect(rec.errors).ToNot(BeEmpty())
		})
	})

	Describe("Short writes", func() {
		It("Should report failure and still close the file", func() {
			sfs := &shortFS{FS: types.NewMemFS()}
			b = bridge.New(bridge.WithFS(sfs), bridge.WithLogger(rec))
			Expect(b.WriteString("/data/x.txt", "hello")).To(BeFalse())
			Expect(sfs.last).ToNot(BeNil())
			Expect(sfs.last.closed).To(BeTrue())
			Expect(rec.errors).To(HaveLen(1))
			Expect(rec.errors[0]).To(ContainSubstring("short write 4 of 5"))

			err := b.Append("/data/x.txt", []byte("abc"))
			Expect(errors.TypeOf(err)).To(Equal(errors.ErrorTypeWrite))
			Expect(sfs.last.closed).To(BeTrue())
		})
	})

	Describe("ReadFromFile", func() {
		It("Should return an empty string for a missing file", func() {
			p := filepath.Join(root, "ghost.txt")
			Expect(b.ReadFromFile(p)).To(BeEmpty())
			Expect(rec.errors).To(HaveLen(1))
			Expect(rec.errors[0]).To(ContainSubstring("open file failed: " + p))
		})
		It("Should distinguish a missing file from an empty one", func() {
			missing := filepath.Join(root, "ghost.txt")
			_, err := b.ReadFile(missing)
			Expect(errors.IsNotFound(err)).To(BeTrue())

			empty := filepath.Join(root, "empty.txt")
			Expect(b.WriteString(empty, "")).To(BeTrue())
			data, err := b.ReadFile(empty)
			Expect(err).ToNot(HaveOccurred())
			Expect(data).To(BeEmpty())
		})
		It("Should assemble content across chunk boundaries", func() {
			b = bridge.New(bridge.WithChunkSize(3), bridge.WithLogger(rec))
			p := filepath.Join(root, "alpha.txt")
			content := strings.Repeat("ABCDEFGHIJKLMNOPQRSTUVWXYZ", 10)
			Expect(b.WriteString(p, content)).To(BeTrue())
			Expect(b.ReadFromFile(p)).To(Equal(content))
			Expect(rec.infos).To(ContainElement("read file: " + p + ", length: 260"))
		})
		It("Should return an empty string for a directory", func() {
			Expect(b.ReadFromFile(root)).To(BeEmpty())
			_, err := b.ReadFile(root)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("FileExists", func() {
		It("Should be false before creation and true after a write", func() {
			p := filepath.Join(root, "x.txt")
			Expect(b.FileExists(p)).To(BeFalse())
			Expect(b.WriteString(p, "x")).To(BeTrue())
			Expect(b.FileExists(p)).To(BeTrue())
			Expect(rec.infos).To(ContainElement("check file exists: " + p + ", result: true"))
		})
		It("Should be false for a directory", func() {
			Expect(b.FileExists(root)).To(BeFalse())
			Expect(rec.infos).To(ContainElement("check file exists: " + root + ", result: false"))
		})
		It("Should follow symlinks to regular files", func() {
			target := filepath.Join(root, "target.txt")
			link := filepath.Join(root, "link.txt")
			Expect(b.WriteString(target, "t")).To(BeTrue())
			Expect(os.Symlink(target, link)).To(Succeed())
			Expect(b.FileExists(link)).To(BeTrue())

			dirLink := filepath.Join(root, "dirlink")
			Expect(os.Symlink(root, dirLink)).To(Succeed())
			Expect(b.FileExists(dirLink)).To(BeFalse())
		})
	})

	Describe("Stat", func() {
		It("Should classify a missing path as not found", func() {
			_, err := b.Stat(filepath.Join(root, "ghost"))
			Expect(errors.TypeOf(err)).To(Equal(errors.ErrorTypeNotFound))
		})
		It("Should report other stat failures as stat errors", func() {
			b = bridge.New(bridge.WithFS(deniedFS{FS: types.NewMemFS()}), bridge.WithLogger(rec))
			_, err := b.Stat("/locked")
			Expect(errors.TypeOf(err)).To(Equal(errors.ErrorTypeStat))
			Expect(b.FileExists("/locked")).To(BeFalse())
		})
	})

	Describe("Mkdirs", func() {
		It("Should create all nested levels and be idempotent", func() {
			p := filepath.Join(root, "a", "b", "c")
			Expect(b.Mkdirs(p)).To(BeTrue())
			for _, d := range []string{"a", "a/b", "a/b/c"} {
				info, err := os.Stat(filepath.Join(root, d))
				Expect(err).ToNot(HaveOccurred())
				Expect(info.IsDir()).To(BeTrue())
			}
			Expect(rec.infos).To(ContainElement("created directory: " + p))

			Expect(b.Mkdirs(p)).To(BeTrue())
			Expect(rec.infos).To(ContainElement("directory already exists: " + p))
			Expect(rec.errors).To(BeEmpty())
		})
		It("Should accept a trailing separator", func() {
			p := filepath.Join(root, "x", "y") + "/"
			Expect(b.Mkdirs(p)).To(BeTrue())
			Expect(b.Mkdirs(p)).To(BeTrue())
		})
		It("Should report a regular file at the target as a conflict", func() {
			p := filepath.Join(root, "occupied")
			Expect(b.WriteString(p, "file")).To(BeTrue())
			Expect(b.Mkdirs(p)).To(BeFalse())
			Expect(errors.TypeOf(b.EnsureDirectory(p))).To(Equal(errors.ErrorTypeConflict))
			Expect(b.FileExists(p)).To(BeTrue())
		})
		It("Should fail when an intermediate component is a file", func() {
			file := filepath.Join(root, "f")
			Expect(b.WriteString(file, "x")).To(BeTrue())
			p := filepath.Join(file, "sub", "leaf")
			Expect(b.Mkdirs(p)).To(BeFalse())
			Expect(rec.errors).ToNot(BeEmpty())
			Expect(errors.TypeOf(b.EnsureDirectory(p))).To(Equal(errors.ErrorTypeMkdir))
		})
		It("Should detect conflicts on the in-memory file system", func() {
			b = bridge.New(bridge.WithFS(types.NewMemFS()), bridge.WithLogger(rec))
			Expect(b.WriteString("/m/file", "x")).To(BeTrue())
			Expect(b.Mkdirs("/m/file")).To(BeFalse())
			Expect(b.Mkdirs("/m/dir/a")).To(BeTrue())
		})
		It("Should apply the configured directory mode", func() {
			b = bridge.New(bridge.WithDirMode(0700))
			p := filepath.Join(root, "private")
			Expect(b.Mkdirs(p)).To(BeTrue())
			info, err := os.Stat(p)
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0700)))
		})
	})

	Describe("WriteToFile", func() {
		It("Should create missing parents before writing", func() {
			p := filepath.Join(root, "deep", "er", "cfg.txt")
			Expect(b.WriteToFile(p, "mode=fast")).To(BeTrue())
			Expect(b.ReadFromFile(p)).To(Equal("mode=fast"))
		})
	})

	Describe("ReadTrimmed", func() {
		It("Should trim surrounding whitespace", func() {
			p := filepath.Join(root, "cfg.txt")
			Expect(b.WriteString(p, "  balance\n")).To(BeTrue())
			Expect(b.ReadTrimmed(p)).To(Equal("balance"))
		})
		It("Should return an empty string for a directory without opening it", func() {
			Expect(b.ReadTrimmed(root)).To(BeEmpty())
			Expect(rec.errors).To(BeEmpty())
		})
	})

	Describe("In-memory file system", func() {
		It("Should follow the same write, append and truncate rules", func() {
			b = bridge.New(bridge.WithFS(types.NewMemFS()))
			Expect(b.WriteString("/m/x.txt", "first")).To(BeTrue())
			Expect(b.WriteString("/m/x.txt", "2nd")).To(BeTrue())
			Expect(b.AppendToFile("/m/x.txt", "+more")).To(BeTrue())
			Expect(b.ReadFromFile("/m/x.txt")).To(Equal("2nd+more"))
			Expect(b.FileExists("/m")).To(BeFalse())
		})
	})

	It("Should pass the end-to-end scenario", func() {
		dir := filepath.Join(root, "t")
		p := filepath.Join(dir, "x.txt")
		Expect(b.Mkdirs(dir)).To(BeTrue())
		Expect(b.WriteString(p, "hello")).To(BeTrue())
		Expect(b.ReadFromFile(p)).To(Equal("hello"))
		Expect(b.FileExists(p)).To(BeTrue())
		Expect(b.AppendToFile(p, " world")).To(BeTrue())
		Expect(b.ReadFromFile(p)).To(Equal("hello world"))
	})
})
